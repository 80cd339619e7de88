package metrics

import (
	"math"
	"sort"
	"time"
)

// summarize builds a snapshot from raw samples. Samples may arrive in any
// order; output ordering is deterministic.
func summarize(samples []Metric, counters map[string]float64, now time.Time, maxErrors int) Snapshot {
	snap := Snapshot{
		GeneratedAt:  now,
		Counters:     make(map[string]float64, len(counters)),
		Series:       []SeriesStats{},
		RecentErrors: []Metric{},
		Samples:      len(samples),
	}
	for k, v := range counters {
		snap.Counters[k] = round3(v)
	}

	sorted := append([]Metric(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })
	if n := len(sorted); n > 0 {
		oldest, newest := sorted[0].Timestamp, sorted[n-1].Timestamp
		snap.Oldest, snap.Newest = &oldest, &newest
	}

	type key struct {
		name string
		kind Kind
	}
	values := map[key][]float64{}
	for _, m := range sorted {
		k := key{m.Name, m.Kind}
		values[k] = append(values[k], m.Value)
	}
	for k, vs := range values {
		snap.Series = append(snap.Series, stats(k.name, k.kind, vs))
	}
	sort.Slice(snap.Series, func(i, j int) bool {
		if snap.Series[i].Name != snap.Series[j].Name {
			return snap.Series[i].Name < snap.Series[j].Name
		}
		return snap.Series[i].Kind < snap.Series[j].Kind
	})

	// newest errors first
	for i := len(sorted) - 1; i >= 0 && len(snap.RecentErrors) < maxErrors; i-- {
		if sorted[i].Kind == KindError {
			snap.RecentErrors = append(snap.RecentErrors, sorted[i])
		}
	}
	return snap
}

// stats expects vs in arrival order; Last is the final element.
func stats(name string, kind Kind, vs []float64) SeriesStats {
	s := SeriesStats{Name: name, Kind: kind, Count: len(vs), Min: math.Inf(1), Max: math.Inf(-1), Last: vs[len(vs)-1]}
	for _, v := range vs {
		s.Sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Avg = round3(s.Sum / float64(len(vs)))
	s.Sum = round3(s.Sum)

	cp := append([]float64(nil), vs...)
	sort.Float64s(cp)
	idx := int(math.Ceil(0.95*float64(len(cp)))) - 1
	if idx < 0 {
		idx = 0
	}
	s.P95 = cp[idx]
	return s
}

// trim drops samples older than the cutoff and then the oldest beyond limit.
// samples must be in arrival order.
func trim(samples []Metric, cutoff time.Time, limit int) ([]Metric, int) {
	start := 0
	if !cutoff.IsZero() {
		for start < len(samples) && samples[start].Timestamp.Before(cutoff) {
			start++
		}
	}
	if limit > 0 && len(samples)-start > limit {
		start = len(samples) - limit
	}
	if start == 0 {
		return samples, 0
	}
	kept := make([]Metric, len(samples)-start)
	copy(kept, samples[start:])
	return kept, start
}

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
