package store

import (
	"context"

	"github.com/AngelCh415/creator-calc/internal/models"
)

// DefaultSavedLimit caps saved calculations per user.
const DefaultSavedLimit = 50

type HistoryRepository interface {
	CreateHistory(ctx context.Context, e models.HistoryEntry) (models.HistoryEntry, error)
	ListHistory(ctx context.Context, userID string, limit, offset int) ([]models.HistoryEntry, int, error)
	ClearHistory(ctx context.Context, userID string) (int, error)
	// SummarizeHistory aggregates per platform without loading the entries.
	SummarizeHistory(ctx context.Context, userID string) ([]models.PlatformStats, error)
}

type SavedCalculationRepository interface {
	// CreateSaved fails with models.ErrLimitExceeded once the user is at the cap.
	CreateSaved(ctx context.Context, s models.SavedCalculation) (models.SavedCalculation, error)
	ListSaved(ctx context.Context, userID string, limit, offset int) ([]models.SavedCalculation, int, error)
	GetSaved(ctx context.Context, userID, id string) (models.SavedCalculation, error)
	RenameSaved(ctx context.Context, userID, id, name string) (models.SavedCalculation, error)
	DeleteSaved(ctx context.Context, userID, id string) error
}

type Store interface {
	HistoryRepository
	SavedCalculationRepository
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
