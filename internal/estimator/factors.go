package estimator

import (
	"fmt"
	"math"

	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/rates"
)

type engagementScore struct {
	ok         bool
	rate       float64 // percent
	derived    bool
	viewsBased bool
	noData     bool
	band       rates.Band
	multiplier float64
}

func (e *Estimator) engagement(in models.CalculatorInput, audience float64) engagementScore {
	if audience == 0 {
		return engagementScore{}
	}
	m := in.Metrics
	var out engagementScore
	switch {
	case m.EngagementRate != nil:
		out.rate = *m.EngagementRate
	case m.AvgLikes != nil || m.AvgComments != nil || m.AvgShares != nil:
		interactions := val(m.AvgLikes) + val(m.AvgComments) + val(m.AvgShares)
		denom := audience
		if views, ok := viewsPerPost(in); ok && views > 0 {
			denom = views
			out.viewsBased = true
		}
		out.rate = interactions / denom * 100
		if math.IsInf(out.rate, 0) {
			out.rate = interactions / audience * 100
			out.viewsBased = false
		}
		out.derived = true
	default:
		return engagementScore{noData: true}
	}
	out.ok = true
	out.band = e.t.Engagement.Match(out.rate)
	out.multiplier = e.t.Engagement.Curve(out.rate)
	return out
}

type consistencyScore struct {
	ok         bool
	multiplier float64
	frequency  *rates.Band
	age        *rates.Band
	perWeek    float64
	months     float64
}

func (e *Estimator) consistency(in models.CalculatorInput) consistencyScore {
	out := consistencyScore{multiplier: 1}
	if pw, ok := in.PostsPerWeek(); ok {
		b := e.t.Consistency.Frequency.Match(pw)
		out.ok, out.frequency, out.perWeek = true, &b, pw
		out.multiplier *= b.Multiplier
	}
	if months, ok := in.AgeMonths(); ok {
		b := e.t.Consistency.AccountAge.Match(months)
		out.ok, out.age, out.months = true, &b, months
		out.multiplier *= b.Multiplier
	}
	return out
}

type qualityScore struct {
	ok         bool
	retention  bool
	value      float64
	band       rates.Band
	multiplier float64
}

// quality uses audience retention on YouTube and the comments-per-like ratio
// elsewhere; it is skipped when neither can be computed.
func (e *Estimator) quality(in models.CalculatorInput) qualityScore {
	m := in.Metrics
	if in.Platform == models.PlatformYouTube {
		pct, ok := 0.0, false
		switch {
		case m.WatchTimePercentage != nil:
			pct, ok = *m.WatchTimePercentage, true
		case m.AvgWatchTime != nil && m.VideoLength != nil && *m.VideoLength > 0:
			pct, ok = math.Min(*m.AvgWatchTime / *m.VideoLength * 100, 100), true
		}
		if ok {
			b := e.t.Quality.Retention.Match(pct)
			return qualityScore{ok: true, retention: true, value: pct, band: b, multiplier: b.Multiplier}
		}
	}
	if m.AvgLikes != nil && *m.AvgLikes > 0 && m.AvgComments != nil {
		ratio := *m.AvgComments / *m.AvgLikes
		b := e.t.Quality.CommentRatio.Match(ratio)
		return qualityScore{ok: true, value: ratio, band: b, multiplier: b.Multiplier}
	}
	return qualityScore{}
}

func (e *Estimator) factors(in models.CalculatorInput, eng engagementScore, cons consistencyScore, qual qualityScore, terms []term) map[string]models.Factor {
	out := make(map[string]models.Factor, len(terms))
	niche, loc := in.Profile.ContentNiche, in.Profile.AudienceLocation
	nr := e.t.Niches[niche]

	if eng.ok {
		score := clamp(eng.rate/nr.AvgEngagementRate*50, 0, 100)
		if nr.AvgEngagementRate == 0 {
			score = 50
		}
		out["engagement"] = models.Factor{
			Impact:      eng.band.Impact,
			Score:       ptr(round1(score)),
			Description: fmt.Sprintf("%.1f%% engagement is %s for %s (niche average %.1f%%)", eng.rate, eng.band.Name, niche, nr.AvgEngagementRate),
		}
	} else {
		out["engagement"] = models.Factor{
			Impact:      models.ImpactMedium,
			Description: "Engagement could not be computed; it was left out of the estimate",
		}
	}

	out["niche"] = models.Factor{
		Impact:      e.t.MultiplierImpactOf(nr.Multiplier),
		Multiplier:  ptr(nr.Multiplier),
		Description: fmt.Sprintf("%s content earns %.2fx the baseline rate", niche, nr.Multiplier),
	}
	lm := e.t.Locations[loc].Multiplier
	out["location"] = models.Factor{
		Impact:      e.t.MultiplierImpactOf(lm),
		Multiplier:  ptr(lm),
		Description: fmt.Sprintf("An audience in %s is worth %.2fx the baseline rate", loc, lm),
	}

	if cons.ok {
		desc := ""
		switch {
		case cons.frequency != nil && cons.age != nil:
			desc = fmt.Sprintf("%s posting (%.1f per week) on a %s account (%.0f months)", cons.frequency.Name, cons.perWeek, cons.age.Name, cons.months)
		case cons.frequency != nil:
			desc = fmt.Sprintf("%s posting (%.1f per week)", cons.frequency.Name, cons.perWeek)
		default:
			desc = fmt.Sprintf("%s account (%.0f months)", cons.age.Name, cons.months)
		}
		out["consistency"] = models.Factor{
			Impact:      e.t.MultiplierImpactOf(cons.multiplier),
			Multiplier:  ptr(roundCents(cons.multiplier)),
			Description: desc,
		}
	}

	if qual.ok {
		f := models.Factor{Impact: qual.band.Impact}
		if qual.retention {
			f.Score = ptr(round1(clamp(qual.value, 0, 100)))
			f.Description = fmt.Sprintf("Viewers watch %.0f%% of each video on average (%s retention)", qual.value, qual.band.Name)
		} else {
			f.Score = ptr(round1(clamp(qual.value*1000, 0, 100)))
			f.Description = fmt.Sprintf("%.1f comments per 100 likes (%s audience)", qual.value*100, qual.band.Name)
		}
		out["quality"] = f
	}

	for _, tm := range terms {
		if !tm.present || (tm.name != "verification" && tm.name != "monetization") {
			continue
		}
		f := models.Factor{Impact: models.ImpactMedium, Multiplier: ptr(tm.multiplier)}
		switch {
		case tm.name == "verification" && tm.multiplier > 1:
			f.Impact, f.Description = models.ImpactHigh, "Verified accounts command higher brand rates"
		case tm.name == "verification":
			f.Description = "Account is not verified"
		case tm.multiplier < 1:
			f.Impact, f.Description = models.ImpactLow, "Platform monetization is disabled"
		default:
			f.Description = "Platform monetization is enabled"
		}
		out[tm.name] = f
	}
	return out
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
func round1(f float64) float64        { return math.Round(f*10) / 10 }
func ptr(f float64) *float64          { return &f }
