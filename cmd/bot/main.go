package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/talaffuz-bot/internal/audio"
	"github.com/aliskhannn/talaffuz-bot/internal/config"
	"github.com/aliskhannn/talaffuz-bot/internal/content"
	"github.com/aliskhannn/talaffuz-bot/internal/delivery/telegram"
	"github.com/aliskhannn/talaffuz-bot/internal/infra/postgres"
	"github.com/aliskhannn/talaffuz-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/talaffuz-bot/internal/logger"
	"github.com/aliskhannn/talaffuz-bot/internal/metrics"
	"github.com/aliskhannn/talaffuz-bot/internal/ops"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
	"github.com/aliskhannn/talaffuz-bot/internal/storage"
	"github.com/aliskhannn/talaffuz-bot/internal/transcribe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("bot stopped with error", zap.Error(err))
	}
	lg.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	m := metrics.New()
	checks := make(map[string]ops.Checker)

	// Progress store.
	store, pool, err := newProgressStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		checks["postgres"] = pool
	}

	// Lesson content.
	var gatewayOpts []content.Option
	gatewayOpts = append(gatewayOpts, content.WithRecorder(m))

	if cfg.Redis.Addr != "" {
		rdb, err := content.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		gatewayOpts = append(gatewayOpts, content.WithCache(content.NewRedisCache(rdb, cfg.Content.CacheTTL)))
		checks["redis"] = redisCheck(rdb)
	}

	source, err := newContentSource(cfg, lg)
	if err != nil {
		return err
	}
	gateway := content.NewGateway(source, cfg.Content.Timeout, lg.Named("content"), gatewayOpts...)

	// Services.
	sessionService, err := service.NewSessionService(store, gateway, cfg.Lessons.PerLevel, m, lg.Named("session"))
	if err != nil {
		return err
	}
	validator := service.NewAnswerValidator(cfg.Lessons.PassThreshold)
	verifierService := service.NewVerifierService(store, gateway, validator, m, lg.Named("verifier"))
	lg.Info("answer grading configured",
		zap.Int("lessons_per_level", sessionService.LessonsPerLevel()),
		zap.Float64("pass_threshold", validator.Threshold()),
	)

	// Speech recognition stays optional; typed answers work without it.
	var transcriber telegram.Transcriber
	if cfg.Transcription.Enabled() {
		tr, closeFn, err := newTranscriber(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		transcriber = transcribe.NewLimited(tr, cfg.Transcription.RatePerMinute, cfg.Transcription.Timeout, m)
		lg.Info("speech recognition enabled", zap.String("provider", tr.Name()))
	} else {
		lg.Warn("speech recognition disabled, voice answers will be refused")
	}

	downloader, err := audio.NewDownloader(cfg.Audio.TempDir, cfg.Audio.MaxFileSize, cfg.Transcription.Timeout)
	if err != nil {
		return err
	}
	sweeper := audio.NewSweeper(cfg.Audio.TempDir, cfg.Audio.SweepSchedule, cfg.Audio.MaxAge, lg.Named("sweeper"))

	// Telegram.
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Telegram.Debug
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	handler := telegram.NewHandler(
		bot,
		lg.Named("telegram"),
		sessionService,
		verifierService,
		transcriber,
		downloader,
		m,
		bot.Self.UserName,
		cfg.Telegram.PollTimeout,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return handler.Run(gctx) })
	g.Go(func() error { return sweeper.Start(gctx) })

	if cfg.Ops.Addr != "" {
		srv := ops.NewServer(cfg.Ops.Addr, m.Handler(), checks, lg.Named("ops"))
		g.Go(func() error { return srv.Run(gctx) })
	}

	return g.Wait()
}

// newProgressStore uses Postgres when DATABASE_URL is set and falls back to
// process memory otherwise. The returned pool is nil for the memory store.
func newProgressStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (service.ProgressStore, *pgxpool.Pool, error) {
	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Warn("DATABASE_URL is not set, progress is kept in memory and lost on restart")
		return storage.NewProgressStorage(), nil, nil
	}

	if err := postgres.Migrate(dsn, lg.Named("migrate")); err != nil {
		return nil, nil, err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	return repository.NewProgressRepository(pool), pool, nil
}

func newContentSource(cfg *config.Config, lg *zap.Logger) (content.Source, error) {
	switch cfg.Content.Source {
	case config.SourceS3:
		src, err := content.NewS3Source(content.S3Config{
			Endpoint:  cfg.Content.S3.Endpoint,
			Bucket:    cfg.Content.S3.Bucket,
			AccessKey: cfg.Content.S3.AccessKey,
			SecretKey: cfg.Content.S3.SecretKey,
			UseSSL:    cfg.Content.S3.UseSSL,
			URLExpiry: cfg.Content.S3.URLExpiry,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		if cfg.Content.BaseURL == "" {
			lg.Warn("lesson content source is not configured, placeholders will be served")
			return nil, nil
		}
		return content.NewHTTPSource(cfg.Content.BaseURL, cfg.Content.Timeout), nil
	}
}

// newTranscriber builds the configured provider and its cleanup function.
func newTranscriber(ctx context.Context, cfg *config.Config) (transcribe.Transcriber, func(), error) {
	tc := cfg.Transcription

	if tc.Provider == config.ProviderGoogle {
		g, err := transcribe.NewGoogle(ctx, tc.GoogleCredentials, tc.Language)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close() }, nil
	}

	o, err := transcribe.NewOpenAI(transcribe.OpenAIConfig{
		BaseURL:  tc.OpenAIBaseURL,
		APIKey:   tc.OpenAIAPIKey,
		Model:    tc.Model,
		Language: tc.Language,
		Timeout:  tc.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return o, func() {}, nil
}

func redisCheck(rdb *goredis.Client) ops.CheckFunc {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
