package models

import "time"

// Metrics is the platform-dependent bag of audience numbers. A nil field
// means "not supplied" and is never read as zero.
type Metrics struct {
	Followers           *int64   `json:"followers,omitempty"`
	Subscribers         *int64   `json:"subscribers,omitempty"`
	AvgViews            *float64 `json:"avgViews,omitempty"`
	AvgLikes            *float64 `json:"avgLikes,omitempty"`
	AvgComments         *float64 `json:"avgComments,omitempty"`
	AvgShares           *float64 `json:"avgShares,omitempty"`
	EngagementRate      *float64 `json:"engagementRate,omitempty"`
	AvgStoryViews       *float64 `json:"avgStoryViews,omitempty"`
	AvgReelsViews       *float64 `json:"avgReelsViews,omitempty"`
	AvgWatchTime        *float64 `json:"avgWatchTime,omitempty"`
	VideoLength         *float64 `json:"videoLength,omitempty"`
	WatchTimePercentage *float64 `json:"watchTimePercentage,omitempty"`
}

type Profile struct {
	ContentNiche        Niche    `json:"contentNiche"`
	AudienceLocation    Location `json:"audienceLocation"`
	PostFrequency       *float64 `json:"postFrequency,omitempty"`
	UploadFrequency     *float64 `json:"uploadFrequency,omitempty"`
	AccountAge          *float64 `json:"accountAge,omitempty"`
	ChannelAge          *float64 `json:"channelAge,omitempty"`
	HasVerification     *bool    `json:"hasVerification,omitempty"`
	MonetizationEnabled *bool    `json:"monetizationEnabled,omitempty"`
}

type CalculatorInput struct {
	Platform Platform `json:"platform"`
	Metrics  Metrics  `json:"metrics"`
	Profile  Profile  `json:"profile"`
}

// Audience returns subscribers for YouTube and followers elsewhere, falling
// back to whichever of the two was supplied.
func (in CalculatorInput) Audience() (int64, bool) {
	primary, secondary := in.Metrics.Followers, in.Metrics.Subscribers
	if in.Platform == PlatformYouTube {
		primary, secondary = secondary, primary
	}
	if primary != nil {
		return *primary, true
	}
	if secondary != nil {
		return *secondary, true
	}
	return 0, false
}

// PostsPerWeek prefers uploadFrequency on YouTube and postFrequency elsewhere.
func (in CalculatorInput) PostsPerWeek() (float64, bool) {
	return pick(in.Platform == PlatformYouTube, in.Profile.UploadFrequency, in.Profile.PostFrequency)
}

// AgeMonths prefers channelAge on YouTube and accountAge elsewhere.
func (in CalculatorInput) AgeMonths() (float64, bool) {
	return pick(in.Platform == PlatformYouTube, in.Profile.ChannelAge, in.Profile.AccountAge)
}

func pick(youtube bool, yt, other *float64) (float64, bool) {
	a, b := other, yt
	if youtube {
		a, b = yt, other
	}
	if a != nil {
		return *a, true
	}
	if b != nil {
		return *b, true
	}
	return 0, false
}

type Factor struct {
	Impact      Impact   `json:"impact"`
	Score       *float64 `json:"score,omitempty"`
	Multiplier  *float64 `json:"multiplier,omitempty"`
	Description string   `json:"description"`
}

type CalculationResult struct {
	MonthlyEarnings          float64            `json:"monthlyEarnings"`
	YearlyEarnings           float64            `json:"yearlyEarnings"`
	PerPostEarnings          float64            `json:"perPostEarnings"`
	PerThousandViewsEarnings float64            `json:"perThousandViewsEarnings"`
	Breakdown                map[string]float64 `json:"breakdown"`
	Factors                  map[string]Factor  `json:"factors"`
	Tips                     []string           `json:"tips"`
}

type HistoryEntry struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Platform  Platform          `json:"platform"`
	Input     CalculatorInput   `json:"input"`
	Result    CalculationResult `json:"result"`
	CreatedAt time.Time         `json:"createdAt"`
}

// PlatformStats aggregates one user's history for a single platform.
type PlatformStats struct {
	Platform     Platform `json:"platform"`
	Calculations int      `json:"calculations"`
	AvgMonthly   float64  `json:"avgMonthlyEarnings"`
	BestMonthly  float64  `json:"bestMonthlyEarnings"`
}

type SavedCalculation struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Platform  Platform          `json:"platform"`
	Input     CalculatorInput   `json:"input"`
	Result    CalculationResult `json:"result"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
