package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestRecorder(p Policy) (*MemoryRecorder, *time.Time) {
	r := NewMemoryRecorder(p)
	now := t0
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRecordRejectsInvalid(t *testing.T) {
	r, _ := newTestRecorder(DefaultPolicy())
	ctx := context.Background()
	for _, m := range []Metric{
		{Name: "Bad Name", Kind: KindCounter},
		{Name: "ok", Kind: "gauge"},
		{Name: "ok", Kind: KindTiming, Value: -1},
	} {
		err := r.Record(ctx, m)
		assert.True(t, errors.Is(err, ErrInvalidMetric), "%+v: %v", m, err)
	}
	snap, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, snap.Samples)
}

func TestCountersAndSeries(t *testing.T) {
	r, now := newTestRecorder(DefaultPolicy())
	ctx := context.Background()
	require.NoError(t, r.Record(ctx, Metric{Name: "calculator.calculations", Kind: KindCounter}))
	require.NoError(t, r.Record(ctx, Metric{Name: "calculator.calculations", Kind: KindCounter, Value: 2}))
	for i, v := range []float64{12, 3, 40} {
		*now = t0.Add(time.Duration(i) * time.Second)
		require.NoError(t, r.Record(ctx, Metric{Name: "http.request_ms", Kind: KindTiming, Value: v}))
	}
	require.NoError(t, r.Record(ctx, Metric{Name: "http.errors", Kind: KindError, Value: 1, Tags: map[string]string{"route": "/calculator"}}))

	snap, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, snap.Counters["calculator.calculations"])
	assert.Equal(t, 3.0, snap.Counters["http.request_ms"])
	assert.Equal(t, 6, snap.Samples)
	require.Len(t, snap.RecentErrors, 1)
	assert.Equal(t, "/calculator", snap.RecentErrors[0].Tags["route"])

	var timing SeriesStats
	for _, s := range snap.Series {
		if s.Name == "http.request_ms" {
			timing = s
		}
	}
	assert.Equal(t, SeriesStats{Name: "http.request_ms", Kind: KindTiming, Count: 3, Sum: 55, Avg: 18.333, Min: 3, Max: 40, P95: 40, Last: 40}, timing)
}

func TestRecordTrimsToMaxSamples(t *testing.T) {
	r, _ := newTestRecorder(Policy{MaxSamples: 3, MaxErrors: 10})
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, r.Record(ctx, Metric{Name: "hits", Kind: KindCounter, Value: 1}))
	}
	snap, _ := r.Snapshot(ctx)
	assert.Equal(t, 3, snap.Samples)
	assert.Equal(t, 10.0, snap.Counters["hits"], "counters survive trimming")
}

func TestPruneByAge(t *testing.T) {
	r, now := newTestRecorder(Policy{MaxSamples: 100, MaxAge: time.Minute, MaxErrors: 10})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		*now = t0.Add(time.Duration(i) * 30 * time.Second)
		require.NoError(t, r.Record(ctx, Metric{Name: "hits", Kind: KindCounter}))
	}
	// samples at 0s, 30s, 60s, 90s, 120s; cutoff is 60s
	dropped, err := r.Prune(ctx, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	snap, _ := r.Snapshot(ctx)
	assert.Equal(t, 3, snap.Samples)
	assert.Equal(t, t0.Add(time.Minute), *snap.Oldest)
	assert.Equal(t, t0.Add(2*time.Minute), *snap.Newest)
}

func TestConcurrentRecord(t *testing.T) {
	r := NewMemoryRecorder(Policy{MaxSamples: 50, MaxErrors: 5})
	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = r.Record(ctx, Metric{Name: fmt.Sprintf("worker.%d", g%2), Kind: KindCounter})
			}
		}(g)
	}
	wg.Wait()
	snap, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, snap.Samples)
	assert.Equal(t, 400.0, snap.Counters["worker.0"])
	assert.Equal(t, 400.0, snap.Counters["worker.1"])
}

func TestCountersFoldPastCap(t *testing.T) {
	r, _ := newTestRecorder(Policy{MaxSamples: 10, MaxErrors: 5, MaxCounters: 3})
	ctx := context.Background()
	for i := 0; i < 5000; i++ {
		require.NoError(t, r.Record(ctx, Metric{Name: fmt.Sprintf("client.%d", i), Kind: KindCounter}))
	}
	require.NoError(t, r.Record(ctx, Metric{Name: "client.1", Kind: KindCounter}))

	snap, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Samples)
	assert.Len(t, snap.Counters, 4)
	assert.Equal(t, 2.0, snap.Counters["client.1"], "existing names keep counting")
	assert.Equal(t, 4997.0, snap.Counters[OverflowCounter])
}
