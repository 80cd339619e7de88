package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented mirrors every recorded metric into Prometheus collectors and
// delegates storage to the wrapped recorder. Only server-side names become
// label values, and at most maxLabelNames of them; everything else is
// reported as "client" or "other".
type Instrumented struct {
	next    Recorder
	events  *prometheus.CounterVec
	timings *prometheus.HistogramVec

	mu    sync.Mutex
	names map[string]struct{}
}

const maxLabelNames = 64

var serverPrefixes = []string{"calculator.", "http."}

func NewInstrumented(next Recorder, reg prometheus.Registerer) (*Instrumented, error) {
	i := &Instrumented{
		next:  next,
		names: make(map[string]struct{}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creatorcalc",
			Name:      "events_total",
			Help:      "Application metrics recorded, by name and kind.",
		}, []string{"name", "kind"}),
		timings: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "creatorcalc",
			Name:      "timing_milliseconds",
			Help:      "Timing metrics in milliseconds, by name.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"name"}),
	}
	for _, c := range []prometheus.Collector{i.events, i.timings} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return i, nil
}

func (i *Instrumented) Record(ctx context.Context, m Metric) error {
	if err := i.next.Record(ctx, m); err != nil {
		return err
	}
	name := i.label(m.Name)
	i.events.WithLabelValues(name, string(m.Kind)).Add(counterDelta(m))
	if m.Kind == KindTiming {
		i.timings.WithLabelValues(name).Observe(m.Value)
	}
	return nil
}

func (i *Instrumented) label(name string) string {
	server := false
	for _, p := range serverPrefixes {
		if strings.HasPrefix(name, p) {
			server = true
			break
		}
	}
	if !server {
		return "client"
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.names[name]; ok {
		return name
	}
	if len(i.names) >= maxLabelNames {
		return "other"
	}
	i.names[name] = struct{}{}
	return name
}

func (i *Instrumented) Snapshot(ctx context.Context) (Snapshot, error) { return i.next.Snapshot(ctx) }

func (i *Instrumented) Prune(ctx context.Context, now time.Time) (int, error) {
	return i.next.Prune(ctx, now)
}
