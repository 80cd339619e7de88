// Package estimator turns a creator's audience metrics and profile into an
// earnings estimate. Estimate is pure: no I/O, no clock, no shared mutable
// state, so one Estimator can serve any number of goroutines.
package estimator

import (
	"math"

	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/rates"
)

const weeksPerMonth = 52.0 / 12.0

type Estimator struct {
	t *rates.Table
}

func New(t *rates.Table) *Estimator { return &Estimator{t: t} }

func (e *Estimator) Table() *rates.Table { return e.t }

// term is one factor of the composite multiplier. Absent terms are skipped
// rather than counted as zero.
type term struct {
	name       string
	multiplier float64
	present    bool
}

func (e *Estimator) Estimate(in models.CalculatorInput) (models.CalculationResult, error) {
	if err := e.check(in); err != nil {
		return models.CalculationResult{}, err
	}
	pr := e.t.Platforms[in.Platform]
	nr := e.t.Niches[in.Profile.ContentNiche]
	lr := e.t.Locations[in.Profile.AudienceLocation]

	audienceN, _ := in.Audience()
	audience := float64(audienceN)

	eng := e.engagement(in, audience)
	cons := e.consistency(in)
	qual := e.quality(in)

	terms := []term{
		{name: "engagement", multiplier: eng.multiplier, present: eng.ok},
		{name: "niche", multiplier: nr.Multiplier, present: true},
		{name: "location", multiplier: lr.Multiplier, present: true},
		{name: "consistency", multiplier: cons.multiplier, present: cons.ok},
		{name: "quality", multiplier: qual.multiplier, present: qual.ok},
		verificationTerm(in, e.t),
		monetizationTerm(in, e.t),
	}
	composite := 1.0
	for _, tm := range terms {
		if tm.present {
			composite *= tm.multiplier
		}
	}

	monthly := roundCents(audience / 1000 * pr.BaseRatePer1K * composite)

	postsPerWeek, ok := in.PostsPerWeek()
	if !ok {
		postsPerWeek = pr.DefaultPostsPerWeek
	}
	postsPerMonth := postsPerWeek * weeksPerMonth

	res := models.CalculationResult{
		MonthlyEarnings: monthly,
		YearlyEarnings:  monthly * 12,
		PerPostEarnings: roundCents(monthly / math.Max(postsPerMonth, 1)),
		Breakdown:       allocate(monthly, pr.RevenueSplit),
	}
	if views, ok := viewsPerPost(in); ok {
		if monthlyViews := views * postsPerMonth; monthlyViews > 0 {
			// sub-view averages can overflow; treat that as not computable
			if v := monthly / (monthlyViews / 1000); !math.IsInf(v, 0) && !math.IsNaN(v) {
				res.PerThousandViewsEarnings = roundCents(v)
			}
		}
	}
	res.Factors = e.factors(in, eng, cons, qual, terms)
	res.Tips = tipsFor(in.Platform, res.Factors, eng)
	return res, nil
}

func (e *Estimator) check(in models.CalculatorInput) error {
	if !in.Platform.Valid() {
		return &models.UnsupportedPlatformError{Platform: string(in.Platform)}
	}
	for _, f := range in.NumericFields() {
		if f.Value < 0 || math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return &models.InvalidMetricsError{Field: f.Name, Value: f.Value}
		}
	}
	verr := &models.ValidationError{}
	if _, ok := in.Audience(); !ok {
		verr.Details = append(verr.Details, models.FieldError{Field: "metrics.followers", Message: "is required"})
	}
	if _, ok := e.t.Niches[in.Profile.ContentNiche]; !ok {
		verr.Details = append(verr.Details, models.FieldError{Field: "profile.contentNiche", Message: "unknown content niche"})
	}
	if _, ok := e.t.Locations[in.Profile.AudienceLocation]; !ok {
		verr.Details = append(verr.Details, models.FieldError{Field: "profile.audienceLocation", Message: "unknown audience location"})
	}
	verr.Details = append(verr.Details, e.t.RangeErrors(in)...)
	if len(verr.Details) > 0 {
		return verr
	}
	return nil
}

// allocate splits total by shares; the last source absorbs the rounding
// remainder so the parts add back up to total.
func allocate(total float64, split []rates.Share) map[string]float64 {
	out := make(map[string]float64, len(split))
	allocated := 0.0
	for i, s := range split {
		if i == len(split)-1 {
			out[s.Source] += math.Max(roundCents(total-allocated), 0)
			break
		}
		v := roundCents(total * s.Share)
		out[s.Source] += v
		allocated += v
	}
	return out
}

func viewsPerPost(in models.CalculatorInput) (float64, bool) {
	m := in.Metrics
	if in.Platform == models.PlatformInstagram && m.AvgReelsViews != nil && *m.AvgReelsViews > 0 {
		return *m.AvgReelsViews, true
	}
	if m.AvgViews != nil {
		return *m.AvgViews, true
	}
	if in.Platform != models.PlatformInstagram {
		return 0, false
	}
	// stories are the last resort for accounts without reels or feed views
	if m.AvgStoryViews != nil && *m.AvgStoryViews > 0 {
		return *m.AvgStoryViews, true
	}
	if m.AvgReelsViews != nil {
		return *m.AvgReelsViews, true
	}
	if m.AvgStoryViews != nil {
		return *m.AvgStoryViews, true
	}
	return 0, false
}

func verificationTerm(in models.CalculatorInput, t *rates.Table) term {
	v := in.Profile.HasVerification
	if v == nil {
		return term{name: "verification"}
	}
	m := 1.0
	if *v {
		m = t.VerificationBonus
	}
	return term{name: "verification", multiplier: m, present: true}
}

func monetizationTerm(in models.CalculatorInput, t *rates.Table) term {
	v := in.Profile.MonetizationEnabled
	if v == nil {
		return term{name: "monetization"}
	}
	m := 1.0
	if !*v {
		m = t.MonetizationDisabledMultiplier
	}
	return term{name: "monetization", multiplier: m, present: true}
}

func roundCents(f float64) float64 { return math.Round(f*100) / 100 }
