package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/creator-calc/internal/models"
)

type MemoryStore struct {
	mu         sync.RWMutex
	history    map[string][]models.HistoryEntry // by user, oldest first
	saved      map[string]map[string]models.SavedCalculation
	savedLimit int
	now        func() time.Time
}

func NewMemoryStore(savedLimit int) *MemoryStore {
	if savedLimit <= 0 {
		savedLimit = DefaultSavedLimit
	}
	return &MemoryStore{
		history:    make(map[string][]models.HistoryEntry),
		saved:      make(map[string]map[string]models.SavedCalculation),
		savedLimit: savedLimit,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) CreateHistory(_ context.Context, e models.HistoryEntry) (models.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[e.UserID] = append(s.history[e.UserID], e)
	return e, nil
}

func (s *MemoryStore) ListHistory(_ context.Context, userID string, limit, offset int) ([]models.HistoryEntry, int, error) {
	s.mu.RLock()
	src := s.history[userID]
	rows := make([]models.HistoryEntry, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		rows = append(rows, src[i])
	}
	s.mu.RUnlock()

	// newest first; equal timestamps keep reverse insertion order
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return paginate(rows, limit, offset), len(rows), nil
}

func (s *MemoryStore) SummarizeHistory(_ context.Context, userID string) ([]models.PlatformStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byPlatform := map[models.Platform]*models.PlatformStats{}
	var order []models.Platform
	for _, h := range s.history[userID] {
		ps, ok := byPlatform[h.Platform]
		if !ok {
			ps = &models.PlatformStats{Platform: h.Platform, BestMonthly: h.Result.MonthlyEarnings}
			byPlatform[h.Platform] = ps
			order = append(order, h.Platform)
		}
		ps.Calculations++
		ps.AvgMonthly += h.Result.MonthlyEarnings
		ps.BestMonthly = math.Max(ps.BestMonthly, h.Result.MonthlyEarnings)
	}
	out := make([]models.PlatformStats, 0, len(order))
	for _, p := range order {
		ps := byPlatform[p]
		ps.AvgMonthly /= float64(ps.Calculations)
		out = append(out, *ps)
	}
	return out, nil
}

func (s *MemoryStore) ClearHistory(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.history[userID])
	delete(s.history, userID)
	return n, nil
}

func (s *MemoryStore) CreateSaved(_ context.Context, c models.SavedCalculation) (models.SavedCalculation, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.saved[c.UserID]
	if !ok {
		byID = make(map[string]models.SavedCalculation)
		s.saved[c.UserID] = byID
	}
	if len(byID) >= s.savedLimit {
		return models.SavedCalculation{}, fmt.Errorf("user has %d saved calculations: %w", len(byID), models.ErrLimitExceeded)
	}
	byID[c.ID] = c
	return c, nil
}

func (s *MemoryStore) ListSaved(_ context.Context, userID string, limit, offset int) ([]models.SavedCalculation, int, error) {
	s.mu.RLock()
	rows := make([]models.SavedCalculation, 0, len(s.saved[userID]))
	for _, v := range s.saved[userID] {
		rows = append(rows, v)
	}
	s.mu.RUnlock()

	// deterministic order: newest first, id breaks ties
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	return paginate(rows, limit, offset), len(rows), nil
}

func (s *MemoryStore) GetSaved(_ context.Context, userID, id string) (models.SavedCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.saved[userID][id]
	if !ok {
		return models.SavedCalculation{}, models.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) RenameSaved(_ context.Context, userID, id, name string) (models.SavedCalculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.saved[userID][id]
	if !ok {
		return models.SavedCalculation{}, models.ErrNotFound
	}
	c.Name = name
	c.UpdatedAt = s.now()
	s.saved[userID][id] = c
	return c, nil
}

func (s *MemoryStore) DeleteSaved(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[userID][id]; !ok {
		return models.ErrNotFound
	}
	delete(s.saved[userID], id)
	return nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
