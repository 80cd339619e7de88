package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AngelCh415/creator-calc/internal/estimator"
	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/rates"
)

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate earnings for one creator",
		Long: `Estimate earnings from flags, or from a JSON CalculatorInput with --input.
Use --input - to read the JSON from stdin.

Example:
  calcctl estimate --platform tiktok --followers 100000 --views 50000 \
    --likes 2500 --comments 100 --niche gaming --location us`,
		RunE: runEstimate,
	}
	f := cmd.Flags()
	f.String("input", "", "JSON input file, - for stdin")
	f.String("platform", "", "tiktok, instagram or youtube")
	f.Int64("followers", 0, "followers (subscribers on youtube)")
	f.Float64("views", 0, "average views per post")
	f.Float64("likes", 0, "average likes per post")
	f.Float64("comments", 0, "average comments per post")
	f.Float64("shares", 0, "average shares per post")
	f.Float64("engagement", 0, "engagement rate in percent")
	f.Float64("retention", 0, "watch time percentage (youtube)")
	f.String("niche", "other", "content niche")
	f.String("location", "other", "primary audience location")
	f.Float64("posts-per-week", 0, "posting frequency")
	f.Float64("age-months", 0, "account or channel age in months")
	f.Bool("verified", false, "account is verified")
	f.Bool("monetized", false, "monetization is enabled")
	return cmd
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	tables, err := loadTables(cmd)
	if err != nil {
		return err
	}
	in, err := inputFrom(cmd)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := estimator.New(tables).Estimate(in)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{"input": in, "result": res})
}

func inputFrom(cmd *cobra.Command) (models.CalculatorInput, error) {
	var in models.CalculatorInput
	f := cmd.Flags()
	if path, _ := f.GetString("input"); path != "" {
		var r io.Reader = cmd.InOrStdin()
		if path != "-" {
			file, err := os.Open(path)
			if err != nil {
				return in, err
			}
			defer file.Close()
			r = file
		}
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			return in, fmt.Errorf("decode input: %w", err)
		}
		return in, nil
	}

	platform, _ := f.GetString("platform")
	niche, _ := f.GetString("niche")
	location, _ := f.GetString("location")
	in.Platform = models.Platform(platform)
	in.Profile.ContentNiche = models.Niche(niche)
	in.Profile.AudienceLocation = models.Location(location)

	if f.Changed("followers") {
		followers, _ := f.GetInt64("followers")
		if in.Platform == models.PlatformYouTube {
			in.Metrics.Subscribers = &followers
		} else {
			in.Metrics.Followers = &followers
		}
	}

	// Only flags the caller actually set become metrics; the rest stay absent.
	floats := map[string]**float64{
		"views":      &in.Metrics.AvgViews,
		"likes":      &in.Metrics.AvgLikes,
		"comments":   &in.Metrics.AvgComments,
		"shares":     &in.Metrics.AvgShares,
		"engagement": &in.Metrics.EngagementRate,
		"retention":  &in.Metrics.WatchTimePercentage,
	}
	if in.Platform == models.PlatformYouTube {
		floats["posts-per-week"] = &in.Profile.UploadFrequency
		floats["age-months"] = &in.Profile.ChannelAge
	} else {
		floats["posts-per-week"] = &in.Profile.PostFrequency
		floats["age-months"] = &in.Profile.AccountAge
	}
	f.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "verified", "monetized":
			v, _ := f.GetBool(fl.Name)
			if fl.Name == "verified" {
				in.Profile.HasVerification = &v
			} else {
				in.Profile.MonetizationEnabled = &v
			}
		default:
			if dst, ok := floats[fl.Name]; ok {
				v, _ := f.GetFloat64(fl.Name)
				*dst = &v
			}
		}
	})
	return in, nil
}

func loadTables(cmd *cobra.Command) (*rates.Table, error) {
	path, _ := cmd.Flags().GetString("rates")
	return rates.Load(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
