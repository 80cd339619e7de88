package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRecorder keeps counters and a bounded sample window under one mutex.
type MemoryRecorder struct {
	mu       sync.Mutex
	policy   Policy
	counters map[string]float64
	samples  []Metric // arrival order
	now      func() time.Time
}

func NewMemoryRecorder(p Policy) *MemoryRecorder {
	return &MemoryRecorder{
		policy:   p,
		counters: make(map[string]float64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRecorder) Record(_ context.Context, m Metric) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m = stamp(m, r.now)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[r.counterKey(m.Name)] += counterDelta(m)
	r.samples = append(r.samples, m)
	if r.policy.MaxSamples > 0 && len(r.samples) > r.policy.MaxSamples {
		r.samples, _ = trim(r.samples, time.Time{}, r.policy.MaxSamples)
	}
	return nil
}

func (r *MemoryRecorder) Snapshot(_ context.Context) (Snapshot, error) {
	r.mu.Lock()
	samples := append([]Metric(nil), r.samples...)
	counters := make(map[string]float64, len(r.counters))
	for k, v := range r.counters {
		counters[k] = v
	}
	r.mu.Unlock()
	return summarize(samples, counters, r.now(), r.policy.MaxErrors), nil
}

// Prune applies the age and size policy; counters are cumulative and kept.
func (r *MemoryRecorder) Prune(_ context.Context, now time.Time) (int, error) {
	var cutoff time.Time
	if r.policy.MaxAge > 0 {
		cutoff = now.Add(-r.policy.MaxAge)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var dropped int
	r.samples, dropped = trim(r.samples, cutoff, r.policy.MaxSamples)
	return dropped, nil
}

// counterKey folds new names into OverflowCounter once the cap is reached.
// Callers hold r.mu.
func (r *MemoryRecorder) counterKey(name string) string {
	if _, ok := r.counters[name]; ok || r.policy.MaxCounters <= 0 || len(r.counters) < r.policy.MaxCounters {
		return name
	}
	return OverflowCounter
}

func stamp(m Metric, now func() time.Time) Metric {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = now()
	}
	return m
}

// counterDelta is the value for counters and one occurrence otherwise.
func counterDelta(m Metric) float64 {
	if m.Kind == KindCounter {
		if m.Value == 0 {
			return 1
		}
		return m.Value
	}
	return 1
}
