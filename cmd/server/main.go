package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/creator-calc/internal/auth"
	"github.com/AngelCh415/creator-calc/internal/calculator"
	"github.com/AngelCh415/creator-calc/internal/config"
	"github.com/AngelCh415/creator-calc/internal/enterprise"
	"github.com/AngelCh415/creator-calc/internal/estimator"
	"github.com/AngelCh415/creator-calc/internal/httpx"
	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/rates"
	"github.com/AngelCh415/creator-calc/internal/store"
	"github.com/AngelCh415/creator-calc/internal/tracking"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("using the public development JWT secret; tokens can be forged by anyone")
	}

	tables, err := rates.Load(cfg.RatesFile)
	if err != nil {
		return err
	}

	var (
		st    store.Store
		ready func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL, cfg.SavedLimit)
		if err != nil {
			return err
		}
		defer pg.Close()
		st, ready = pg, pg.Health
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore(cfg.SavedLimit)
		logger.Info("using in-memory store")
	}

	var base metrics.Recorder
	if cfg.RedisURL != "" {
		client, err := metrics.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		base = metrics.NewRedisRecorder(client, cfg.Metrics, "")
		logger.Info("using redis metrics store")
	} else {
		base = metrics.NewMemoryRecorder(cfg.Metrics)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.NewInstrumented(base, reg)
	if err != nil {
		return err
	}

	pruner, err := metrics.NewPruner(rec, cfg.PruneSchedule, logger)
	if err != nil {
		return err
	}

	var tracker tracking.Tracker = tracking.Noop{}
	var sink *tracking.SinkTracker
	if cfg.SinkURL != "" {
		sink = tracking.NewSinkTracker(tracking.NewHTTPClient(cfg.HTTPTimeout), cfg.SinkURL, cfg.SinkSecret, cfg.QueueSize, logger)
		tracker = sink
	}

	svc := calculator.NewService(calculator.Dependencies{
		Estimator:  estimator.New(tables),
		Enhancers:  enterprise.NewRegistry(logger),
		History:    st,
		Saved:      st,
		Tracker:    tracker,
		Metrics:    rec,
		Log:        logger,
		SavedLimit: cfg.SavedLimit,
	})

	r := httpx.NewRouter(httpx.Deps{
		Log:        logger,
		Calculator: svc,
		Tables:     tables,
		Auth:       auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Metrics:    rec,
		Gatherer:   reg,
		Ready:      ready,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		pruner.Start()
		<-gctx.Done()
		pruner.Stop()
		return nil
	})
	if sink != nil {
		g.Go(func() error { return sink.Run(gctx) })
	}
	return g.Wait()
}
