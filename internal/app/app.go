package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/internal/archive"
	"github.com/fragmentforge/escape-api/internal/config"
	"github.com/fragmentforge/escape-api/internal/leaderboard"
	"github.com/fragmentforge/escape-api/internal/logging"
	"github.com/fragmentforge/escape-api/internal/question"
	"github.com/fragmentforge/escape-api/internal/server"
	"github.com/fragmentforge/escape-api/internal/session"
	"github.com/fragmentforge/escape-api/pkg/http/ws"
)

// Application aggregates shared infrastructure (Redis, optional Postgres,
// HTTP server) and the background workers around them.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	lbBroadcaster *leaderboard.Broadcaster
	bgCancels     []context.CancelFunc
}

// New bootstraps config, logger, Redis, the optional archive database and
// the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	var pool *pgxpool.Pool
	var archiveRepo *archive.Repository
	if cfg.Postgres.Enabled() {
		connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
			cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

		var err error
		pool, err = pgxpool.New(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		archiveRepo = archive.NewRepository(pool)
	} else {
		logger.Warn().Msg("no archive database configured; completed sessions are not archived")
	}

	// Question bank: remote source when configured, local file otherwise,
	// with a Redis cache in front of either.
	var source question.Source
	if cfg.Game.QuestionsURL != "" {
		source = question.NewHTTPSource(cfg.Game.QuestionsURL, &http.Client{Timeout: cfg.Game.FetchTimeout})
	} else {
		source = question.NewFileSource(cfg.Game.QuestionsPath)
	}
	questionSvc := question.NewService(source, question.NewCache(redisClient, cfg.Game.BankCacheTTL), logger)
	if err := questionSvc.Load(ctx); err != nil {
		// The API still serves sessions; the bank endpoint reports 503
		// until an admin reload succeeds.
		logger.Error().Err(err).Msg("question bank unavailable at startup")
	}

	wsHub := ws.NewHub(logger)

	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN:     cfg.Leaderboard.TopN,
		DailyTTL: cfg.Leaderboard.DailyTTL,
	})

	sessionStore := session.NewRedisStore(redisClient, cfg.Game.SessionTTL, logger)
	tokenMgr := session.NewTokenManager(session.TokenConfig{
		Secret: []byte(cfg.Security.SessionTokenSecret),
		TTL:    cfg.Game.TokenTTL,
		Issuer: cfg.Name,
	})

	opts := session.ManagerOptions{Scores: leaderboardSvc, Hub: wsHub}
	if archiveRepo != nil {
		opts.Archiver = archiveRepo
	}
	manager := session.NewManager(sessionStore, questionSvc, opts, logger)

	handlers := server.Handlers{
		Sessions:    session.NewHTTPHandlers(manager, tokenMgr, logger),
		SessionWS:   session.NewWSHandler(manager, tokenMgr, wsHub, logger),
		Questions:   question.NewHTTPHandlers(questionSvc, cfg.Security.AdminPasswordHash, logger),
		Leaderboard: leaderboard.NewHTTPHandler(leaderboardSvc, logger),
	}

	return &Application{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		redis:         redisClient,
		http:          server.NewHTTPServer(cfg, logger, redisClient, handlers),
		lbBroadcaster: leaderboard.NewBroadcaster(redisClient, wsHub, "", logger),
		bgCancels:     make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	server.Shutdown(shutdownCtx, a.http, a.logger)

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.lbBroadcaster.Run(bgCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
		}
	}()
}
