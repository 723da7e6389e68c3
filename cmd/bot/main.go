// Package main is the entry point for the roulette bot.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roulette-bot/internal/bot"
	"roulette-bot/internal/config"
	"roulette-bot/internal/game/roulette"
	"roulette-bot/internal/handler"
	"roulette-bot/internal/metrics"
	"roulette-bot/internal/pkg/db"
	"roulette-bot/internal/pkg/lock"
	"roulette-bot/internal/report"
	"roulette-bot/internal/repository"
	"roulette-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log)
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	userRepo := repository.NewUserRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)
	accountService := service.NewAccountService(userRepo, txRepo, cfg.Roulette.StartingBalance)

	snapshots, closeSnapshots := openSnapshotStore(cfg.Storage, dbPool)
	defer closeSnapshots()

	stats := roulette.NewStatistics(cfg.Roulette.HistoryCapacity)
	statsService := service.NewStatisticsService(stats, snapshots)
	if err := statsService.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load roulette statistics")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(registry, stats.HouseBalance)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	names := handler.NewNames()
	telegramReporter := handler.NewTelegramReporter(names)
	reporters := report.Multi{telegramReporter}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer closeQuietly("redis", rdb)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis not reachable, publishing anyway")
		}
		reporters = append(reporters, report.NewRedisPublisher(rdb, cfg.Redis.Channel))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := report.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		defer closeQuietly("kafka", kafkaPublisher)
		reporters = append(reporters, kafkaPublisher)
	}

	bettors := lock.NewKeyedLock()
	engine, err := roulette.NewEngine(roulette.Dependencies{
		Statistics:    stats,
		Ledger:        accountService,
		Durations:     roulette.DurationFunc(cfg.Roulette.GameDuration),
		Reporter:      reporters,
		Observer:      collector,
		NeighborCount: cfg.Roulette.NeighborCount,
		Bettors:       bettors,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create roulette engine")
	}

	var metricsServer interface{ Shutdown(context.Context) error }
	if cfg.Metrics.Port > 0 {
		metricsServer = metrics.StartServer(cfg.Metrics.Port, registry, dbPool.HealthCheck)
	}

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:   cfg,
		Table:    engine,
		Accounts: accountService,
		Bettors:  bettors,
		Names:    names,
		Reporter: telegramReporter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	go statsService.Run(ctx, cfg.Storage.AutosaveInterval)
	telegramReporter.StartCleaner(ctx, 5*time.Minute)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()

	// Open rounds are settled so no stake is left debited without a draw.
	for _, r := range engine.ResolveAll() {
		log.Info().Int64("table_id", r.TableID).Str("round_id", r.RoundID).Msg("Round settled at shutdown")
	}

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if err := statsService.Save(saveCtx); err != nil {
		log.Error().Err(err).Msg("Failed to save roulette statistics")
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(saveCtx)
	}

	cancel()
	log.Info().Msg("Bot stopped gracefully")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// openSnapshotStore picks the statistics snapshot backend.
func openSnapshotStore(cfg config.StorageConfig, pool *db.Pool) (service.SnapshotStore, func()) {
	if cfg.SnapshotDriver == "sqlite" {
		store, err := repository.OpenSQLiteSnapshotStore(cfg.SQLitePath, repository.DefaultSnapshotKey)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open SQLite snapshot store")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite snapshot store")
		return store, func() { closeQuietly("sqlite", store) }
	}
	return repository.NewSnapshotRepository(pool.Pool, repository.DefaultSnapshotKey), func() {}
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("resource", name).Msg("Close failed")
	}
}
