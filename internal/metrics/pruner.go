package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner applies a recorder's retention policy on a cron schedule such as
// "@every 5m" or "*/10 * * * *".
type Pruner struct {
	c   *cron.Cron
	rec Recorder
	log *slog.Logger
	now func() time.Time
}

func NewPruner(rec Recorder, schedule string, log *slog.Logger) (*Pruner, error) {
	p := &Pruner{c: cron.New(), rec: rec, log: log, now: func() time.Time { return time.Now().UTC() }}
	if _, err := p.c.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("metrics prune schedule %q: %w", schedule, err)
	}
	return p, nil
}

func (p *Pruner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := p.rec.Prune(ctx, p.now())
	if err != nil {
		p.log.Error("metrics prune failed", slog.String("err", err.Error()))
		return
	}
	p.log.Debug("metrics pruned", slog.Int("dropped", n))
}

func (p *Pruner) Start() { p.c.Start() }

// Stop halts the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() { <-p.c.Stop().Done() }
