package estimator

import "github.com/AngelCh415/creator-calc/internal/models"

var factorOrder = []string{"engagement", "niche", "location", "consistency", "quality", "verification", "monetization"}

var weaknessTips = map[string]map[models.Platform][]string{
	"engagement": {
		models.PlatformTikTok:    {"Hook viewers in the first 2 seconds and end videos with a question to lift likes and comments."},
		models.PlatformInstagram: {"Use carousel posts and interactive story stickers (polls, questions) to raise engagement."},
		models.PlatformYouTube:   {"Pin a comment with a question and reply to early comments to boost engagement signals."},
	},
	"niche": {
		"": {"Blend in adjacent higher-paying topics (tech reviews, personal finance, business tips) to attract bigger sponsors."},
	},
	"location": {
		"": {"Add English captions and topics that travel well to reach audiences in higher-value markets like the US, UK and Canada."},
	},
	"consistency": {
		"": {"Post at least 3 times per week on a fixed schedule; consistent accounts earn more sponsor trust."},
	},
	"quality": {
		models.PlatformTikTok:    {"Reply to comments with video responses to turn passive likers into a talking community."},
		models.PlatformInstagram: {"Write captions that invite opinions and answer DMs to deepen audience conversation."},
		models.PlatformYouTube:   {"Tighten intros and add chapter markers so viewers keep watching longer."},
	},
	"monetization": {
		models.PlatformTikTok:    {"Join the TikTok Creator Rewards program and enable LIVE gifts once you qualify."},
		models.PlatformInstagram: {"Turn on Instagram subscriptions, gifts and the creator marketplace."},
		models.PlatformYouTube:   {"Apply to the YouTube Partner Program to unlock ad revenue and memberships."},
	},
}

var generalTips = map[models.Platform][]string{
	models.PlatformTikTok: {
		"Repurpose your best-performing videos into series to compound views.",
		"Pitch brands directly with a media kit showing your engagement rate.",
	},
	models.PlatformInstagram: {
		"Cross-post Reels to Facebook to widen reach without extra production work.",
		"Offer brands bundled packages of Reels plus Stories.",
	},
	models.PlatformYouTube: {
		"Publish Shorts that point back to long-form videos to grow subscribers.",
		"Add affiliate links for products you review in the video description.",
	},
}

// tipsFor returns at least one tip per low-impact factor, followed by general
// tips when nothing was flagged.
func tipsFor(p models.Platform, factors map[string]models.Factor, eng engagementScore) []string {
	var tips []string
	for _, name := range factorOrder {
		f, ok := factors[name]
		if !ok || f.Impact != models.ImpactLow {
			continue
		}
		byPlatform := weaknessTips[name]
		t, ok := byPlatform[p]
		if !ok {
			t = byPlatform[""]
		}
		if len(t) == 0 {
			t = []string{"Improve your " + name + " to raise your estimated earnings."}
		}
		tips = append(tips, t...)
	}
	if eng.noData {
		tips = append(tips, "Add your average likes, comments and views so engagement can be included in the estimate.")
	} else if eng.derived && !eng.viewsBased {
		tips = append(tips, "Add your average views for a more accurate engagement rate.")
	}
	if len(tips) == 0 {
		tips = append(tips, generalTips[p]...)
	}
	if len(tips) == 0 {
		tips = append(tips, "Keep posting consistently and track which content earns the most.")
	}
	return tips
}
