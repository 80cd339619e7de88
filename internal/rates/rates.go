// Package rates holds the earnings tables shared by the estimator and the
// calculator config endpoints.
package rates

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/creator-calc/internal/models"
)

//go:embed rates.yaml
var defaultYAML []byte

type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type Share struct {
	Source string  `yaml:"source" json:"source"`
	Share  float64 `yaml:"share" json:"share"`
}

type PlatformRates struct {
	BaseRatePer1K       float64          `yaml:"base_rate_per_1k" json:"baseRatePer1k"`
	DefaultPostsPerWeek float64          `yaml:"default_posts_per_week" json:"defaultPostsPerWeek"`
	RevenueSplit        []Share          `yaml:"revenue_split" json:"revenueSplit"`
	Ranges              map[string]Range `yaml:"ranges" json:"ranges"`
}

type NicheRates struct {
	Multiplier        float64 `yaml:"multiplier" json:"multiplier"`
	AvgEngagementRate float64 `yaml:"avg_engagement_rate" json:"avgEngagementRate"`
}

type LocationRates struct {
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// Band matches values strictly below Below; a nil Below is the open top band.
type Band struct {
	Name       string        `yaml:"name" json:"name"`
	Below      *float64      `yaml:"below,omitempty" json:"below,omitempty"`
	Multiplier float64       `yaml:"multiplier" json:"multiplier"`
	Impact     models.Impact `yaml:"impact" json:"impact"`
}

type Bands []Band

// Match returns the first band whose bound exceeds v.
func (b Bands) Match(v float64) Band {
	for _, band := range b {
		if band.Below == nil || v < *band.Below {
			return band
		}
	}
	return b[len(b)-1]
}

func (b Bands) lower(i int) float64 {
	if i == 0 {
		return 0
	}
	return *b[i-1].Below
}

// Curve interpolates linearly between the multipliers anchored at each band's
// lower bound and stays flat past the last anchor.
func (b Bands) Curve(v float64) float64 {
	if v <= 0 {
		return b[0].Multiplier
	}
	for i := 1; i < len(b); i++ {
		x0, x1 := b.lower(i-1), b.lower(i)
		if v < x1 {
			y0, y1 := b[i-1].Multiplier, b[i].Multiplier
			return y0 + (y1-y0)*(v-x0)/(x1-x0)
		}
	}
	return b[len(b)-1].Multiplier
}

// checkCurve rejects curves where audience × Curve(k/audience) could shrink as
// the audience grows: every segment's line must meet the y axis at or above zero.
func (b Bands) checkCurve() error {
	for i := 1; i < len(b); i++ {
		x0, x1 := b.lower(i-1), b.lower(i)
		y0, y1 := b[i-1].Multiplier, b[i].Multiplier
		slope := (y1 - y0) / (x1 - x0)
		if y0-slope*x0 < 0 {
			return fmt.Errorf("band %q: curve segment too steep", b[i].Name)
		}
	}
	return nil
}

type Table struct {
	Currency    string                            `yaml:"currency"`
	Platforms   map[models.Platform]PlatformRates `yaml:"platforms"`
	Niches      map[models.Niche]NicheRates       `yaml:"niches"`
	Locations   map[models.Location]LocationRates `yaml:"locations"`
	Engagement  Bands                             `yaml:"engagement_bands"`
	Consistency struct {
		Frequency  Bands `yaml:"frequency"`
		AccountAge Bands `yaml:"account_age"`
	} `yaml:"consistency"`
	Quality struct {
		CommentRatio Bands `yaml:"comment_ratio"`
		Retention    Bands `yaml:"retention"`
	} `yaml:"quality"`
	VerificationBonus              float64 `yaml:"verification_bonus"`
	MonetizationDisabledMultiplier float64 `yaml:"monetization_disabled_multiplier"`
	MultiplierImpact               struct {
		LowBelow  float64 `yaml:"low_below"`
		HighAbove float64 `yaml:"high_above"`
	} `yaml:"multiplier_impact"`
}

// RangeErrors reports input fields outside the platform's published ranges.
// Fields without a range are not checked.
func (t *Table) RangeErrors(in models.CalculatorInput) []models.FieldError {
	pr, ok := t.Platforms[in.Platform]
	if !ok {
		return nil
	}
	var out []models.FieldError
	for _, f := range in.NumericFields() {
		key := f.Name[strings.IndexByte(f.Name, '.')+1:]
		r, ok := pr.Ranges[key]
		if !ok || (f.Value >= r.Min && f.Value <= r.Max) {
			continue
		}
		out = append(out, models.FieldError{
			Field:   f.Name,
			Message: fmt.Sprintf("must be between %s and %s", formatBound(r.Min), formatBound(r.Max)),
		})
	}
	return out
}

func formatBound(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Default returns the embedded table. It panics only if the embedded file is
// broken, which the package tests guard against.
func Default() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("rates: embedded table invalid: %v", err))
	}
	return t
}

// Load reads a table from path, or returns the embedded table if path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Parse(defaultYAML)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse rates: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	var errs []error
	for _, p := range models.Platforms() {
		pr, ok := t.Platforms[p]
		if !ok {
			errs = append(errs, fmt.Errorf("platform %s missing", p))
			continue
		}
		if pr.BaseRatePer1K < 0 {
			errs = append(errs, fmt.Errorf("platform %s: negative base rate", p))
		}
		if len(pr.RevenueSplit) == 0 {
			errs = append(errs, fmt.Errorf("platform %s: empty revenue split", p))
			continue
		}
		sum := 0.0
		for _, s := range pr.RevenueSplit {
			if s.Share < 0 {
				errs = append(errs, fmt.Errorf("platform %s: negative share for %s", p, s.Source))
			}
			sum += s.Share
		}
		if math.Abs(sum-1) > 1e-9 {
			errs = append(errs, fmt.Errorf("platform %s: revenue split sums to %v", p, sum))
		}
	}
	for _, n := range models.Niches() {
		if nr, ok := t.Niches[n]; !ok || nr.Multiplier < 0 {
			errs = append(errs, fmt.Errorf("niche %s missing or negative", n))
		}
	}
	for _, l := range models.Locations() {
		if lr, ok := t.Locations[l]; !ok || lr.Multiplier < 0 {
			errs = append(errs, fmt.Errorf("location %s missing or negative", l))
		}
	}
	for _, nb := range []struct {
		name  string
		bands Bands
	}{
		{"engagement_bands", t.Engagement},
		{"consistency.frequency", t.Consistency.Frequency},
		{"consistency.account_age", t.Consistency.AccountAge},
		{"quality.comment_ratio", t.Quality.CommentRatio},
		{"quality.retention", t.Quality.Retention},
	} {
		if err := nb.bands.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nb.name, err))
		}
	}
	if t.Engagement.validate() == nil {
		if err := t.Engagement.checkCurve(); err != nil {
			errs = append(errs, fmt.Errorf("engagement_bands: %w", err))
		}
	}
	if t.VerificationBonus <= 0 || t.MonetizationDisabledMultiplier <= 0 {
		errs = append(errs, errors.New("verification_bonus and monetization_disabled_multiplier must be positive"))
	}
	return errors.Join(errs...)
}

func (b Bands) validate() error {
	if len(b) == 0 {
		return errors.New("no bands")
	}
	for i, band := range b {
		last := i == len(b)-1
		if last != (band.Below == nil) {
			return fmt.Errorf("band %q: only the last band may be unbounded", band.Name)
		}
		if !last && *band.Below <= b.lower(i) {
			return fmt.Errorf("band %q: bounds must increase", band.Name)
		}
		if band.Multiplier <= 0 {
			return fmt.Errorf("band %q: multiplier must be positive", band.Name)
		}
		switch band.Impact {
		case models.ImpactLow, models.ImpactMedium, models.ImpactHigh:
		default:
			return fmt.Errorf("band %q: unknown impact %q", band.Name, band.Impact)
		}
	}
	return nil
}

// MultiplierImpactOf classifies a niche or location multiplier.
func (t *Table) MultiplierImpactOf(m float64) models.Impact {
	switch {
	case m < t.MultiplierImpact.LowBelow:
		return models.ImpactLow
	case m > t.MultiplierImpact.HighAbove:
		return models.ImpactHigh
	}
	return models.ImpactMedium
}
