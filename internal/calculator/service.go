// Package calculator wires the estimator to persistence, analytics and the
// metrics store. Only the estimate itself can fail a calculation; anything
// downstream of it is best-effort.
package calculator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/AngelCh415/creator-calc/internal/enterprise"
	"github.com/AngelCh415/creator-calc/internal/estimator"
	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/store"
	"github.com/AngelCh415/creator-calc/internal/tracking"
)

const maxNameLen = 100

type Dependencies struct {
	Estimator  *estimator.Estimator
	Enhancers  *enterprise.Registry
	History    store.HistoryRepository
	Saved      store.SavedCalculationRepository
	Tracker    tracking.Tracker
	Metrics    metrics.Recorder
	Log        *slog.Logger
	SavedLimit int
	Now        func() time.Time
}

type Service struct {
	est        *estimator.Estimator
	enh        *enterprise.Registry
	history    store.HistoryRepository
	saved      store.SavedCalculationRepository
	tracker    tracking.Tracker
	rec        metrics.Recorder
	log        *slog.Logger
	savedLimit int
	now        func() time.Time
}

func NewService(d Dependencies) *Service {
	s := &Service{
		est:        d.Estimator,
		enh:        d.Enhancers,
		history:    d.History,
		saved:      d.Saved,
		tracker:    d.Tracker,
		rec:        d.Metrics,
		log:        d.Log,
		savedLimit: d.SavedLimit,
		now:        d.Now,
	}
	if s.enh == nil {
		s.enh = enterprise.NewRegistry(d.Log)
	}
	if s.tracker == nil {
		s.tracker = tracking.Noop{}
	}
	if s.savedLimit <= 0 {
		s.savedLimit = store.DefaultSavedLimit
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

type Calculation struct {
	Input     models.CalculatorInput   `json:"input"`
	Result    models.CalculationResult `json:"result"`
	Timestamp time.Time                `json:"timestamp"`
}

type EnterpriseCalculation struct {
	Calculation
	Enterprise enterprise.Report `json:"enterprise"`
}

// Calculate validates and estimates. userID may be empty for anonymous
// callers, in which case nothing is written to history.
func (s *Service) Calculate(ctx context.Context, userID string, in models.CalculatorInput) (Calculation, error) {
	calc, err := s.estimate(in)
	if err != nil {
		return Calculation{}, err
	}
	s.afterCalculation(ctx, userID, calc, tracking.EventCalculationCompleted)
	return calc, nil
}

func (s *Service) CalculateEnterprise(ctx context.Context, userID string, in models.CalculatorInput, opts enterprise.Options) (EnterpriseCalculation, error) {
	calc, err := s.estimate(in)
	if err != nil {
		return EnterpriseCalculation{}, err
	}
	rep := s.enh.Apply(ctx, opts, calc.Input, calc.Result)
	s.afterCalculation(ctx, userID, calc, tracking.EventEnterpriseCompleted)
	return EnterpriseCalculation{Calculation: calc, Enterprise: rep}, nil
}

func (s *Service) estimate(in models.CalculatorInput) (Calculation, error) {
	if err := in.Validate(); err != nil {
		return Calculation{}, err
	}
	res, err := s.est.Estimate(in)
	if err != nil {
		return Calculation{}, err
	}
	return Calculation{Input: in, Result: res, Timestamp: s.now()}, nil
}

func (s *Service) afterCalculation(ctx context.Context, userID string, calc Calculation, event string) {
	platform := string(calc.Input.Platform)
	s.record(ctx, metrics.Metric{Name: "calculator.calculations", Kind: metrics.KindCounter, Value: 1, Tags: map[string]string{"platform": platform}})
	if userID != "" && s.history != nil {
		_, err := s.history.CreateHistory(ctx, models.HistoryEntry{
			UserID:    userID,
			Platform:  calc.Input.Platform,
			Input:     calc.Input,
			Result:    calc.Result,
			CreatedAt: calc.Timestamp,
		})
		if err != nil {
			s.log.Warn("history write failed", slog.String("user_id", userID), slog.String("err", err.Error()))
			s.record(ctx, metrics.Metric{Name: "calculator.history_errors", Kind: metrics.KindError, Value: 1})
		}
	}
	s.tracker.Track(tracking.Event{
		Name:            event,
		UserID:          userID,
		Platform:        platform,
		MonthlyEarnings: calc.Result.MonthlyEarnings,
		Props:           map[string]any{"niche": calc.Input.Profile.ContentNiche, "location": calc.Input.Profile.AudienceLocation},
		Timestamp:       calc.Timestamp,
	})
}

func (s *Service) record(ctx context.Context, m metrics.Metric) {
	if s.rec == nil {
		return
	}
	if err := s.rec.Record(ctx, m); err != nil {
		s.log.Debug("metric not recorded", slog.String("name", m.Name), slog.String("err", err.Error()))
	}
}

func (s *Service) SavedLimit() int { return s.savedLimit }

// Save recomputes the result from the input so stored results always match
// the current tables.
func (s *Service) Save(ctx context.Context, userID, name string, in models.CalculatorInput) (models.SavedCalculation, error) {
	name, err := validName(name)
	if err != nil {
		return models.SavedCalculation{}, err
	}
	calc, err := s.estimate(in)
	if err != nil {
		return models.SavedCalculation{}, err
	}
	saved, err := s.saved.CreateSaved(ctx, models.SavedCalculation{
		UserID:    userID,
		Name:      name,
		Platform:  in.Platform,
		Input:     calc.Input,
		Result:    calc.Result,
		CreatedAt: calc.Timestamp,
	})
	if err != nil {
		return models.SavedCalculation{}, err
	}
	s.record(ctx, metrics.Metric{Name: "calculator.saved", Kind: metrics.KindCounter, Value: 1, Tags: map[string]string{"platform": string(in.Platform)}})
	s.tracker.Track(tracking.Event{Name: tracking.EventCalculationSaved, UserID: userID, Platform: string(in.Platform), MonthlyEarnings: calc.Result.MonthlyEarnings})
	return saved, nil
}

type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (s *Service) ListSaved(ctx context.Context, userID string, limit, offset int) (Page[models.SavedCalculation], error) {
	limit, offset = clampLimitOffset(limit, offset)
	items, total, err := s.saved.ListSaved(ctx, userID, limit, offset)
	if err != nil {
		return Page[models.SavedCalculation]{}, err
	}
	return Page[models.SavedCalculation]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) GetSaved(ctx context.Context, userID, id string) (models.SavedCalculation, error) {
	return s.saved.GetSaved(ctx, userID, id)
}

func (s *Service) RenameSaved(ctx context.Context, userID, id, name string) (models.SavedCalculation, error) {
	name, err := validName(name)
	if err != nil {
		return models.SavedCalculation{}, err
	}
	return s.saved.RenameSaved(ctx, userID, id, name)
}

func (s *Service) DeleteSaved(ctx context.Context, userID, id string) error {
	return s.saved.DeleteSaved(ctx, userID, id)
}

func (s *Service) ListHistory(ctx context.Context, userID string, limit, offset int) (Page[models.HistoryEntry], error) {
	limit, offset = clampLimitOffset(limit, offset)
	items, total, err := s.history.ListHistory(ctx, userID, limit, offset)
	if err != nil {
		return Page[models.HistoryEntry]{}, err
	}
	return Page[models.HistoryEntry]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) ClearHistory(ctx context.Context, userID string) (int, error) {
	return s.history.ClearHistory(ctx, userID)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", &models.ValidationError{Details: []models.FieldError{{Field: "name", Message: "is required"}}}
	case len([]rune(name)) > maxNameLen:
		return "", &models.ValidationError{Details: []models.FieldError{{Field: "name", Message: "must be at most 100 characters"}}}
	}
	return name, nil
}

func clampLimitOffset(limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit, offset
}

// IsClientError reports whether err is the caller's fault.
func IsClientError(err error) bool {
	var (
		verr *models.ValidationError
		perr *models.UnsupportedPlatformError
		merr *models.InvalidMetricsError
	)
	return errors.As(err, &verr) || errors.As(err, &perr) || errors.As(err, &merr)
}
