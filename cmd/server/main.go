package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smukkama/factory-monitor/internal/aggregation"
	"github.com/smukkama/factory-monitor/internal/api"
	"github.com/smukkama/factory-monitor/internal/auth"
	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/live"
	"github.com/smukkama/factory-monitor/internal/livestate"
	"github.com/smukkama/factory-monitor/internal/queue"
	"github.com/smukkama/factory-monitor/internal/scheduler"
	"github.com/smukkama/factory-monitor/internal/store"
	"github.com/smukkama/factory-monitor/internal/telemetry"
	"github.com/smukkama/factory-monitor/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	telemetry.SetupLogging(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("telemetry shutdown error")
		}
	}()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}

	// Records end on the reference date, so "today" is pinned to it.
	clk := clock.Fixed{At: cfg.Data.ReferenceDate.Add(12 * time.Hour)}
	agg := aggregation.NewAggregator(st, clk, cfg.Metrics.Windows, cfg.Metrics.Alerts)
	sessions := auth.NewSessionManager(st, cfg.Sessions.MaxSessions)

	sched := scheduler.New(cfg.Live.Workers)
	sched.Start()
	defer sched.Stop()

	var (
		sinks []live.Sink
		ready func(context.Context) error
	)

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
		state := livestate.NewStateManager(redisClient, cfg.Live.LatestTTL)
		sinks = append(sinks, state)
		ready = state.Ping
		log.Info().Str("addr", cfg.Redis.Addr).Msg("latest readings mirrored to redis")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := queue.NewReadingProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings)
		defer producer.Close()

		sinks = append(sinks, producer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.TopicReadings).Msg("live readings published to kafka")
	}

	gen := live.NewGenerator(uint64(time.Now().UnixNano()), clock.System{})
	hub := live.NewHub(st, sched, gen, cfg.Live.Interval, sinks...)

	a, err := api.New(agg, st, sessions, hub)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: a.Router(api.RouterOptions{
			ServiceName:    cfg.Telemetry.ServiceName,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			RateLimit:      cfg.HTTP.RateLimit,
			RequestTimeout: cfg.HTTP.RequestTimeout,
			Ready:          ready,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().
		Str("addr", server.Addr).
		Str("source", cfg.Data.Source).
		Int("machines", len(st.Machines())).
		Dur("live_interval", cfg.Live.Interval).
		Msg("factory monitor listening")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	stats := sched.Stats()
	log.Info().
		Int("sessions", sessions.Count()).
		Uint64("readings_fired", stats.Fired).
		Msg("server stopped")
	return nil
}
