package metrics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func TestSummarizeOrdering(t *testing.T) {
	samples := []Metric{
		{ID: "3", Name: "b", Kind: KindError, Value: 1, Timestamp: at(3)},
		{ID: "1", Name: "a", Kind: KindTiming, Value: 5, Timestamp: at(1)},
		{ID: "2", Name: "b", Kind: KindError, Value: 1, Timestamp: at(2)},
		{ID: "4", Name: "a", Kind: KindCounter, Value: 2, Timestamp: at(4)},
	}
	snap := summarize(samples, map[string]float64{"a": 2.00049}, at(10), 1)

	gotSeries := []string{}
	for _, s := range snap.Series {
		gotSeries = append(gotSeries, s.Name+"/"+string(s.Kind))
	}
	if diff := cmp.Diff([]string{"a/counter", "a/timing", "b/error"}, gotSeries); diff != "" {
		t.Fatalf("series order (-want +got):\n%s", diff)
	}
	if len(snap.RecentErrors) != 1 || snap.RecentErrors[0].ID != "3" {
		t.Fatalf("expected only the newest error, got %+v", snap.RecentErrors)
	}
	if snap.Counters["a"] != 2 {
		t.Fatalf("expected counters rounded to 3 places, got %v", snap.Counters["a"])
	}
	if !snap.Oldest.Equal(at(1)) || !snap.Newest.Equal(at(4)) {
		t.Fatalf("window = %v..%v", snap.Oldest, snap.Newest)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	snap := summarize(nil, nil, at(0), 10)
	if snap.Samples != 0 || snap.Oldest != nil || len(snap.Series) != 0 || snap.RecentErrors == nil {
		t.Fatalf("unexpected empty snapshot: %+v", snap)
	}
}

func TestStatsP95(t *testing.T) {
	vs := make([]float64, 0, 20)
	for i := 20; i >= 1; i-- {
		vs = append(vs, float64(i))
	}
	s := stats("x", KindTiming, vs)
	if s.P95 != 19 || s.Min != 1 || s.Max != 20 || s.Last != 1 || s.Avg != 10.5 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestTrim(t *testing.T) {
	samples := []Metric{{ID: "a", Timestamp: at(1)}, {ID: "b", Timestamp: at(2)}, {ID: "c", Timestamp: at(3)}, {ID: "d", Timestamp: at(4)}}

	kept, dropped := trim(samples, at(2), 0)
	if dropped != 1 || kept[0].ID != "b" {
		t.Fatalf("age trim: dropped=%d kept=%v", dropped, kept)
	}
	kept, dropped = trim(samples, time.Time{}, 2)
	if dropped != 2 || kept[0].ID != "c" {
		t.Fatalf("size trim: dropped=%d kept=%v", dropped, kept)
	}
	kept, dropped = trim(samples, time.Time{}, 0)
	if dropped != 0 || len(kept) != 4 {
		t.Fatalf("no-op trim: dropped=%d kept=%v", dropped, kept)
	}
}
