package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AngelCh415/creator-calc/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS calculation_history (
	id UUID PRIMARY KEY,
	user_id VARCHAR(100) NOT NULL,
	platform VARCHAR(20) NOT NULL,
	input JSONB NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_history_user_created ON calculation_history(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS saved_calculations (
	id UUID PRIMARY KEY,
	user_id VARCHAR(100) NOT NULL,
	name VARCHAR(200) NOT NULL,
	platform VARCHAR(20) NOT NULL,
	input JSONB NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_saved_user_created ON saved_calculations(user_id, created_at DESC);
`

type PostgresStore struct {
	pool       *pgxpool.Pool
	savedLimit int
}

// OpenPostgres connects, pings and makes sure the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string, savedLimit int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	if savedLimit <= 0 {
		savedLimit = DefaultSavedLimit
	}
	return &PostgresStore{pool: pool, savedLimit: savedLimit}, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Health(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) CreateHistory(ctx context.Context, e models.HistoryEntry) (models.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	in, res, err := marshalPair(e.Input, e.Result)
	if err != nil {
		return models.HistoryEntry{}, err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO calculation_history (id, user_id, platform, input, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, string(e.Platform), in, res, e.CreatedAt)
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("failed to create history entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, userID string, limit, offset int) ([]models.HistoryEntry, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM calculation_history WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, platform, input, result, created_at
		FROM calculation_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, limitOrAll(limit), max0(offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e             models.HistoryEntry
			platform      string
			inRaw, resRaw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &platform, &inRaw, &resRaw, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan history: %w", err)
		}
		e.Platform = models.Platform(platform)
		if err := unmarshalPair(inRaw, resRaw, &e.Input, &e.Result); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) SummarizeHistory(ctx context.Context, userID string) ([]models.PlatformStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT platform, count(*),
			avg((result->>'monthlyEarnings')::float8),
			max((result->>'monthlyEarnings')::float8)
		FROM calculation_history
		WHERE user_id = $1
		GROUP BY platform`, userID)
	if err != nil {
		return nil, fmt.Errorf("summarize history: %w", err)
	}
	defer rows.Close()

	out := []models.PlatformStats{}
	for rows.Next() {
		var (
			ps       models.PlatformStats
			platform string
		)
		if err := rows.Scan(&platform, &ps.Calculations, &ps.AvgMonthly, &ps.BestMonthly); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		ps.Platform = models.Platform(platform)
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ClearHistory(ctx context.Context, userID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM calculation_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CreateSaved serialises concurrent saves for one user with a transaction
// scoped advisory lock so the cap cannot be overshot.
func (s *PostgresStore) CreateSaved(ctx context.Context, c models.SavedCalculation) (models.SavedCalculation, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt
	in, res, err := marshalPair(c.Input, c.Result)
	if err != nil {
		return models.SavedCalculation{}, err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, c.UserID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		var n int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM saved_calculations WHERE user_id = $1`, c.UserID).Scan(&n); err != nil {
			return fmt.Errorf("count saved: %w", err)
		}
		if n >= s.savedLimit {
			return fmt.Errorf("user has %d saved calculations: %w", n, models.ErrLimitExceeded)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO saved_calculations (id, user_id, name, platform, input, result, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.UserID, c.Name, string(c.Platform), in, res, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create saved calculation: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.SavedCalculation{}, err
	}
	return c, nil
}

const savedColumns = `id, user_id, name, platform, input, result, created_at, updated_at`

func (s *PostgresStore) ListSaved(ctx context.Context, userID string, limit, offset int) ([]models.SavedCalculation, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM saved_calculations WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count saved: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+savedColumns+`
		FROM saved_calculations
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, limitOrAll(limit), max0(offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list saved: %w", err)
	}
	defer rows.Close()

	out := []models.SavedCalculation{}
	for rows.Next() {
		c, err := scanSaved(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) GetSaved(ctx context.Context, userID, id string) (models.SavedCalculation, error) {
	if !validID(id) {
		return models.SavedCalculation{}, models.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+savedColumns+` FROM saved_calculations WHERE user_id = $1 AND id = $2`, userID, id)
	return scanSaved(row)
}

func (s *PostgresStore) RenameSaved(ctx context.Context, userID, id, name string) (models.SavedCalculation, error) {
	if !validID(id) {
		return models.SavedCalculation{}, models.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE saved_calculations SET name = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+savedColumns, userID, id, name)
	return scanSaved(row)
}

func (s *PostgresStore) DeleteSaved(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return models.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_calculations WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete saved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanSaved(row pgx.Row) (models.SavedCalculation, error) {
	var (
		c             models.SavedCalculation
		platform      string
		inRaw, resRaw []byte
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &platform, &inRaw, &resRaw, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SavedCalculation{}, models.ErrNotFound
	}
	if err != nil {
		return models.SavedCalculation{}, fmt.Errorf("scan saved: %w", err)
	}
	c.Platform = models.Platform(platform)
	if err := unmarshalPair(inRaw, resRaw, &c.Input, &c.Result); err != nil {
		return models.SavedCalculation{}, err
	}
	return c, nil
}

func marshalPair(in models.CalculatorInput, res models.CalculationResult) ([]byte, []byte, error) {
	inRaw, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal input: %w", err)
	}
	resRaw, err := json.Marshal(res)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return inRaw, resRaw, nil
}

func unmarshalPair(inRaw, resRaw []byte, in *models.CalculatorInput, res *models.CalculationResult) error {
	if err := json.Unmarshal(inRaw, in); err != nil {
		return fmt.Errorf("failed to unmarshal input: %w", err)
	}
	if err := json.Unmarshal(resRaw, res); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

// validID: ids that are not UUIDs cannot match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// limitOrAll maps "no limit" onto Postgres' LIMIT ALL via a NULL parameter.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
