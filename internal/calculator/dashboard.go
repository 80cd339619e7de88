package calculator

import (
	"context"
	"sort"

	"github.com/AngelCh415/creator-calc/internal/models"
)

type Dashboard struct {
	TotalCalculations int                       `json:"totalCalculations"`
	SavedCount        int                       `json:"savedCount"`
	SavedLimit        int                       `json:"savedLimit"`
	Platforms         []models.PlatformStats    `json:"platforms"`
	Recent            []models.HistoryEntry     `json:"recent"`
	TopSaved          []models.SavedCalculation `json:"topSaved"`
}

const (
	dashboardRecent = 5
	dashboardTop    = 3
)

// Dashboard summarises a user's history and saved calculations.
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	stats, err := s.history.SummarizeHistory(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	recent, total, err := s.history.ListHistory(ctx, userID, dashboardRecent, 0)
	if err != nil {
		return Dashboard{}, err
	}
	// bounded by the per-user saved limit
	saved, savedTotal, err := s.saved.ListSaved(ctx, userID, 0, 0)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalCalculations: total,
		SavedCount:        savedTotal,
		SavedLimit:        s.savedLimit,
		Platforms:         []models.PlatformStats{},
		Recent:            append([]models.HistoryEntry{}, recent...),
		TopSaved:          []models.SavedCalculation{},
	}

	for _, p := range models.Platforms() {
		for _, ps := range stats {
			if ps.Platform == p {
				ps.AvgMonthly = round2(ps.AvgMonthly)
				d.Platforms = append(d.Platforms, ps)
			}
		}
	}

	top := append([]models.SavedCalculation(nil), saved...)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Result.MonthlyEarnings > top[j].Result.MonthlyEarnings
	})
	if len(top) > dashboardTop {
		top = top[:dashboardTop]
	}
	d.TopSaved = append(d.TopSaved, top...)
	return d, nil
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
