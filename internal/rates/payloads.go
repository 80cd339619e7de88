package rates

import (
	"sort"

	"github.com/AngelCh415/creator-calc/internal/models"
)

type PlatformConfig struct {
	Platform            models.Platform  `json:"platform"`
	Ranges              map[string]Range `json:"ranges"`
	DefaultPostsPerWeek float64          `json:"defaultPostsPerWeek"`
	RevenueSources      []string         `json:"revenueSources"`
}

type ConfigPayload struct {
	Currency  string            `json:"currency"`
	Platforms []PlatformConfig  `json:"platforms"`
	Niches    []models.Niche    `json:"niches"`
	Locations []models.Location `json:"locations"`
	Defaults  map[string]any    `json:"defaults"`
}

// Config is served by GET /calculator?type=config.
func (t *Table) Config() ConfigPayload {
	out := ConfigPayload{
		Currency:  t.Currency,
		Niches:    models.Niches(),
		Locations: models.Locations(),
		Defaults: map[string]any{
			"platform":         models.PlatformTikTok,
			"contentNiche":     models.NicheOther,
			"audienceLocation": models.LocationUS,
		},
	}
	for _, p := range models.Platforms() {
		pr := t.Platforms[p]
		sources := make([]string, 0, len(pr.RevenueSplit))
		for _, s := range pr.RevenueSplit {
			sources = append(sources, s.Source)
		}
		out.Platforms = append(out.Platforms, PlatformConfig{
			Platform:            p,
			Ranges:              pr.Ranges,
			DefaultPostsPerWeek: pr.DefaultPostsPerWeek,
			RevenueSources:      sources,
		})
	}
	return out
}

type NicheBenchmark struct {
	Niche             models.Niche `json:"niche"`
	AvgEngagementRate float64      `json:"avgEngagementRate"`
	Multiplier        float64      `json:"multiplier"`
}

type LocationBenchmark struct {
	Location   models.Location `json:"location"`
	Multiplier float64         `json:"multiplier"`
}

type PlatformBenchmark struct {
	Platform      models.Platform `json:"platform"`
	BaseRatePer1K float64         `json:"baseRatePer1k"`
	RevenueSplit  []Share         `json:"revenueSplit"`
}

type BenchmarksPayload struct {
	Currency        string              `json:"currency"`
	Platforms       []PlatformBenchmark `json:"platforms"`
	Niches          []NicheBenchmark    `json:"niches"`
	Locations       []LocationBenchmark `json:"locations"`
	EngagementBands Bands               `json:"engagementBands"`
}

// Benchmarks is served by GET /calculator?type=benchmarks. Niches are ordered
// by average engagement, highest first.
func (t *Table) Benchmarks() BenchmarksPayload {
	out := BenchmarksPayload{Currency: t.Currency, EngagementBands: t.Engagement}
	for _, p := range models.Platforms() {
		pr := t.Platforms[p]
		out.Platforms = append(out.Platforms, PlatformBenchmark{Platform: p, BaseRatePer1K: pr.BaseRatePer1K, RevenueSplit: pr.RevenueSplit})
	}
	for _, n := range models.Niches() {
		nr := t.Niches[n]
		out.Niches = append(out.Niches, NicheBenchmark{Niche: n, AvgEngagementRate: nr.AvgEngagementRate, Multiplier: nr.Multiplier})
	}
	sort.SliceStable(out.Niches, func(i, j int) bool {
		return out.Niches[i].AvgEngagementRate > out.Niches[j].AvgEngagementRate
	})
	for _, l := range models.Locations() {
		out.Locations = append(out.Locations, LocationBenchmark{Location: l, Multiplier: t.Locations[l].Multiplier})
	}
	return out
}
