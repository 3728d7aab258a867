package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"ai-interviewer/internal/config"
	"ai-interviewer/internal/events"
	"ai-interviewer/internal/interviewer"
	"ai-interviewer/internal/logging"
	"ai-interviewer/internal/metrics"
	"ai-interviewer/internal/server"
	"ai-interviewer/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment")
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closer, err := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logging: %v", err)
	}
	defer closer.Close()

	interviewCfg, err := config.LoadOrDefault(cfg.InterviewConfig)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.InterviewConfig).Msg("failed to load interview config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	publisher := events.New(events.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, m, logger)
	defer publisher.Close()

	service := interviewer.New(interviewer.Options{
		Store:    store,
		LLM:      interviewer.NewOpenAIClient(cfg.OpenAI),
		TTS:      interviewer.NewTTSClient(cfg.OpenAI.SpeechURL(), cfg.TTSModel, cfg.OpenAI.Timeout),
		Config:   interviewCfg,
		Recorder: m,
		Events:   publisher,
		Logger:   logger,
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *server.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = server.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	srv := server.New(server.Options{
		Service:   service,
		Recorder:  m,
		Gatherer:  prometheus.DefaultGatherer,
		Config:    cfg,
		Logger:    logger,
		RateLimit: limiter,
	})

	logger.Info().
		Str("env", cfg.Env).
		Interface("llm", cfg.OpenAI.GetModelInfo()).
		Int("maxQuestions", interviewCfg.GetMaxQuestions()).
		Bool("postgres", cfg.UsesPostgres()).
		Bool("kafka", publisher.Enabled()).
		Msg("interview backend configured")

	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("server exited")
}

func openStore(ctx context.Context, cfg *config.ServerConfig, logger zerolog.Logger) (storage.Store, error) {
	if !cfg.UsesPostgres() {
		logger.Info().Str("dir", cfg.ResultsDir).Msg("using file store")
		return storage.NewFileStore(cfg.ResultsDir)
	}

	pg, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info().Msg("using postgres store")
	return pg, nil
}
