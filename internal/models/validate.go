package models

import (
	"fmt"
	"math"
)

type NumericField struct {
	Name  string
	Value float64
}

// NumericFields lists every supplied numeric input in a fixed order.
func (in CalculatorInput) NumericFields() []NumericField {
	var out []NumericField
	addI := func(name string, v *int64) {
		if v != nil {
			out = append(out, NumericField{Name: name, Value: float64(*v)})
		}
	}
	addF := func(name string, v *float64) {
		if v != nil {
			out = append(out, NumericField{Name: name, Value: *v})
		}
	}
	m, p := in.Metrics, in.Profile
	addI("metrics.followers", m.Followers)
	addI("metrics.subscribers", m.Subscribers)
	addF("metrics.avgViews", m.AvgViews)
	addF("metrics.avgLikes", m.AvgLikes)
	addF("metrics.avgComments", m.AvgComments)
	addF("metrics.avgShares", m.AvgShares)
	addF("metrics.engagementRate", m.EngagementRate)
	addF("metrics.avgStoryViews", m.AvgStoryViews)
	addF("metrics.avgReelsViews", m.AvgReelsViews)
	addF("metrics.avgWatchTime", m.AvgWatchTime)
	addF("metrics.videoLength", m.VideoLength)
	addF("metrics.watchTimePercentage", m.WatchTimePercentage)
	addF("profile.postFrequency", p.PostFrequency)
	addF("profile.uploadFrequency", p.UploadFrequency)
	addF("profile.accountAge", p.AccountAge)
	addF("profile.channelAge", p.ChannelAge)
	return out
}

// Validate runs the request-level checks done before estimation.
func (in CalculatorInput) Validate() error {
	verr := &ValidationError{}
	if !in.Platform.Valid() {
		verr.add("platform", fmt.Sprintf("must be one of %v", platforms))
	}
	if _, ok := in.Audience(); !ok {
		field := "metrics.followers"
		if in.Platform == PlatformYouTube {
			field = "metrics.subscribers"
		}
		verr.add(field, "is required")
	}
	for _, f := range in.NumericFields() {
		switch {
		case math.IsNaN(f.Value) || math.IsInf(f.Value, 0):
			verr.add(f.Name, "must be a finite number")
		case f.Value < 0:
			verr.add(f.Name, "must be non-negative")
		}
	}
	if v := in.Metrics.EngagementRate; v != nil && *v > 100 {
		verr.add("metrics.engagementRate", "must be a percentage between 0 and 100")
	}
	if v := in.Metrics.WatchTimePercentage; v != nil && *v > 100 {
		verr.add("metrics.watchTimePercentage", "must be a percentage between 0 and 100")
	}
	if !in.Profile.ContentNiche.Valid() {
		verr.add("profile.contentNiche", "unknown content niche")
	}
	if !in.Profile.AudienceLocation.Valid() {
		verr.add("profile.audienceLocation", "unknown audience location")
	}
	return verr.orNil()
}
