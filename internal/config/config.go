package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/store"
)

// DevJWTSecret is public. It is only used when DEV_INSECURE_JWT is set.
const DevJWTSecret = "dev-secret-change-me"

type Config struct {
	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string
	RatesFile   string

	JWTSecret       string
	JWTTTL          time.Duration
	DevInsecureAuth bool

	SavedLimit    int
	Metrics       metrics.Policy
	PruneSchedule string

	SinkURL    string
	SinkSecret string
	QueueSize  int
}

// Load reads a local .env if present, then the environment. Variables already
// set in the environment win over .env.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	def := metrics.DefaultPolicy()
	devAuth, _ := strconv.ParseBool(os.Getenv("DEV_INSECURE_JWT"))
	secret := os.Getenv("JWT_SECRET")
	if secret == "" && devAuth {
		secret = DevJWTSecret
	}
	return Config{
		Port:            envOr("PORT", "8080"),
		HTTPTimeout:     to,
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RatesFile:       os.Getenv("RATES_FILE"),
		JWTSecret:       secret,
		JWTTTL:          envDuration("JWT_TTL", 24*time.Hour),
		DevInsecureAuth: devAuth,
		SavedLimit:      envInt("SAVED_LIMIT", store.DefaultSavedLimit),
		PruneSchedule:   envOr("METRICS_PRUNE_SCHEDULE", "@every 5m"),
		Metrics: metrics.Policy{
			MaxSamples:  envInt("METRICS_MAX_SAMPLES", def.MaxSamples),
			MaxAge:      envDuration("METRICS_MAX_AGE", def.MaxAge),
			MaxErrors:   def.MaxErrors,
			MaxCounters: envInt("METRICS_MAX_COUNTERS", def.MaxCounters),
		},
		SinkURL:    os.Getenv("ANALYTICS_SINK_URL"),
		SinkSecret: os.Getenv("ANALYTICS_SINK_SECRET"),
		QueueSize:  envInt("ANALYTICS_QUEUE_SIZE", 256),
	}
}

var ErrNoJWTSecret = errors.New("JWT_SECRET is required; set DEV_INSECURE_JWT=true to use the public development secret")

// Validate reports settings the server must not start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrNoJWTSecret
	}
	return nil
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
