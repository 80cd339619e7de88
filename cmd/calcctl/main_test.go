package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/creator-calc/internal/auth"
	"github.com/AngelCh415/creator-calc/internal/models"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

type estimateOutput struct {
	Input  models.CalculatorInput   `json:"input"`
	Result models.CalculationResult `json:"result"`
}

func TestEstimateFromFlags(t *testing.T) {
	out, err := execute(t, "", "estimate",
		"--platform", "tiktok", "--followers", "100000", "--views", "50000",
		"--likes", "2500", "--comments", "100", "--niche", "gaming", "--location", "us")
	require.NoError(t, err)

	var got estimateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 1704.0, got.Result.MonthlyEarnings, 0.001)
	assert.Nil(t, got.Input.Metrics.AvgShares)
	assert.Nil(t, got.Input.Profile.HasVerification)
}

func TestEstimateYouTubeFlagsMapToChannelFields(t *testing.T) {
	out, err := execute(t, "", "estimate",
		"--platform", "youtube", "--followers", "20000", "--posts-per-week", "2",
		"--age-months", "30", "--verified", "--niche", "education", "--location", "uk")
	require.NoError(t, err)

	var got estimateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Input.Metrics.Subscribers)
	assert.Equal(t, int64(20000), *got.Input.Metrics.Subscribers)
	assert.Nil(t, got.Input.Metrics.Followers)
	require.NotNil(t, got.Input.Profile.UploadFrequency)
	assert.Equal(t, 2.0, *got.Input.Profile.UploadFrequency)
	require.NotNil(t, got.Input.Profile.ChannelAge)
	require.NotNil(t, got.Input.Profile.HasVerification)
	assert.True(t, *got.Input.Profile.HasVerification)
}

func TestEstimateFromInputFileAndStdin(t *testing.T) {
	body := `{"platform":"instagram","metrics":{"followers":50000},"profile":{"contentNiche":"fashion","audienceLocation":"us"}}`
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	fromFile, err := execute(t, "", "estimate", "--input", path)
	require.NoError(t, err)
	fromStdin, err := execute(t, body, "estimate", "--input", "-")
	require.NoError(t, err)
	assert.JSONEq(t, fromFile, fromStdin)
}

func TestEstimateRejectsInvalidInput(t *testing.T) {
	_, err := execute(t, "", "estimate", "--platform", "tiktok")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "metrics.followers", verr.Details[0].Field)

	_, err = execute(t, "", "estimate", "--platform", "tiktok", "--followers", "1000", "--posts-per-week", "100")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "profile.postFrequency", verr.Details[0].Field)

	_, err = execute(t, "", "estimate", "--input", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTables(t *testing.T) {
	out, err := execute(t, "", "tables", "config")
	require.NoError(t, err)
	assert.Contains(t, out, `"currency": "USD"`)

	out, err = execute(t, "", "tables", "benchmarks")
	require.NoError(t, err)
	assert.Contains(t, out, `"engagementBands"`)

	_, err = execute(t, "", "tables", "everything")
	assert.Error(t, err)

	_, err = execute(t, "", "tables", "--rates", filepath.Join(t.TempDir(), "nope.yaml"), "config")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	out, err := execute(t, "", "token", "user-7", "--secret", "shh", "--role", "admin")
	require.NoError(t, err)

	id, err := auth.NewIssuer("shh", time.Hour).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-7", id.UserID)
	assert.True(t, id.IsAdmin())

	t.Setenv("JWT_SECRET", "")
	_, err = execute(t, "", "token", "user-7")
	assert.EqualError(t, err, "no secret: set --secret or JWT_SECRET")
}
