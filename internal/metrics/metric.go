// Package metrics is the application metrics store behind /api/metrics.
// Recorders are injected so the in-memory store can be swapped for Redis (or
// anything else) without touching call sites.
package metrics

import (
	"context"
	"errors"
	"regexp"
	"time"
)

type Kind string

const (
	KindCounter Kind = "counter"
	KindTiming  Kind = "timing"
	KindError   Kind = "error"
)

type Metric struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Kind      Kind              `json:"kind"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

var nameRE = regexp.MustCompile(`^[a-z][a-z0-9_.]{0,63}$`)

var ErrInvalidMetric = errors.New("invalid metric")

func (m Metric) Validate() error {
	if !nameRE.MatchString(m.Name) {
		return errors.Join(ErrInvalidMetric, errors.New("name must match "+nameRE.String()))
	}
	switch m.Kind {
	case KindCounter, KindTiming, KindError:
	default:
		return errors.Join(ErrInvalidMetric, errors.New("kind must be counter, timing or error"))
	}
	if m.Value < 0 {
		return errors.Join(ErrInvalidMetric, errors.New("value must be non-negative"))
	}
	if len(m.Tags) > 8 {
		return errors.Join(ErrInvalidMetric, errors.New("at most 8 tags"))
	}
	return nil
}

// Policy bounds what a recorder keeps. Samples beyond MaxSamples or older than
// MaxAge are dropped on Record and Prune. Once MaxCounters distinct names
// exist, counters for new names are folded into OverflowCounter.
type Policy struct {
	MaxSamples  int
	MaxAge      time.Duration
	MaxErrors   int
	MaxCounters int
}

// OverflowCounter collects counts for names recorded after the cap is hit.
const OverflowCounter = "metrics.overflow"

func DefaultPolicy() Policy {
	return Policy{MaxSamples: 1000, MaxAge: time.Hour, MaxErrors: 50, MaxCounters: 500}
}

type SeriesStats struct {
	Name  string  `json:"name"`
	Kind  Kind    `json:"kind"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P95   float64 `json:"p95"`
	Last  float64 `json:"last"`
}

type Snapshot struct {
	GeneratedAt  time.Time          `json:"generatedAt"`
	Counters     map[string]float64 `json:"counters"`
	Series       []SeriesStats      `json:"series"`
	RecentErrors []Metric           `json:"recentErrors"`
	Samples      int                `json:"samples"`
	Oldest       *time.Time         `json:"oldest,omitempty"`
	Newest       *time.Time         `json:"newest,omitempty"`
}

type Recorder interface {
	Record(ctx context.Context, m Metric) error
	Snapshot(ctx context.Context) (Snapshot, error)
	Prune(ctx context.Context, now time.Time) (int, error)
}
