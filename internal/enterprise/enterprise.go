// Package enterprise carries the feature toggles accepted by
// POST /calculator/enterprise. The decorated behaviours plug in as Enhancers;
// none ship by default, so requested flags are reported as unavailable.
package enterprise

import (
	"context"
	"log/slog"

	"github.com/AngelCh415/creator-calc/internal/models"
)

type Options struct {
	IncludeRiskAssessment    bool `json:"includeRiskAssessment"`
	IncludeMarketComparison  bool `json:"includeMarketComparison"`
	IncludeGrowthProjections bool `json:"includeGrowthProjections"`
	UseMLPrediction          bool `json:"useMLPrediction"`
	EnableABTesting          bool `json:"enableABTesting"`
	EnableMonitoring         bool `json:"enableMonitoring"`
}

// Requested lists enabled flags by their JSON names, in declaration order.
func (o Options) Requested() []string {
	var out []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"includeRiskAssessment", o.IncludeRiskAssessment},
		{"includeMarketComparison", o.IncludeMarketComparison},
		{"includeGrowthProjections", o.IncludeGrowthProjections},
		{"useMLPrediction", o.UseMLPrediction},
		{"enableABTesting", o.EnableABTesting},
		{"enableMonitoring", o.EnableMonitoring},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

// Enhancer decorates a base estimate. Flag names the option that turns it on.
type Enhancer interface {
	Flag() string
	Enhance(ctx context.Context, in models.CalculatorInput, res models.CalculationResult) (any, error)
}

type Report struct {
	Options      Options        `json:"options"`
	Enhancements map[string]any `json:"enhancements"`
	Unavailable  []string       `json:"unavailable"`
}

type Registry struct {
	log       *slog.Logger
	enhancers map[string]Enhancer
}

func NewRegistry(log *slog.Logger, enhancers ...Enhancer) *Registry {
	r := &Registry{log: log, enhancers: make(map[string]Enhancer, len(enhancers))}
	for _, e := range enhancers {
		r.enhancers[e.Flag()] = e
	}
	return r
}

// Apply runs every requested enhancer. A failing or missing enhancer never
// fails the base estimate; its flag is listed as unavailable instead.
func (r *Registry) Apply(ctx context.Context, opts Options, in models.CalculatorInput, res models.CalculationResult) Report {
	rep := Report{Options: opts, Enhancements: map[string]any{}, Unavailable: []string{}}
	for _, flag := range opts.Requested() {
		e, ok := r.enhancers[flag]
		if !ok {
			rep.Unavailable = append(rep.Unavailable, flag)
			continue
		}
		out, err := e.Enhance(ctx, in, res)
		if err != nil {
			r.log.Warn("enhancer failed", slog.String("flag", flag), slog.String("err", err.Error()))
			rep.Unavailable = append(rep.Unavailable, flag)
			continue
		}
		rep.Enhancements[flag] = out
	}
	return rep
}
