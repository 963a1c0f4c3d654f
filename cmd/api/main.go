package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elibrary/internal/auth"
	"elibrary/internal/book"
	"elibrary/internal/config"
	"elibrary/internal/httpx"
	"elibrary/internal/platform/logger"
	"elibrary/internal/platform/postgres"
	"elibrary/internal/session"
	"elibrary/internal/user"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Hour
)

func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logger.Init("development", "info")
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.Open(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer dbPool.Close()
	log.Info().Str("dsn", postgres.RedactDSN(cfg.Database.DSN)).Msg("database connection OK")

	ready := []readinessCheck{dbPool.Ping}

	var blacklistRepo session.BlacklistRepository = session.NewBlacklistPostgresRepo(dbPool, cfg.Database.QueryTimeout)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect redis")
		}
		blacklistRepo = session.NewRedisBlacklist(rdb, cfg.Database.QueryTimeout)
		ready = append(ready, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("revoked tokens stored in redis")
	}

	bookService := book.NewService(book.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout))
	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout))
	sessionService := session.NewService(session.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout), blacklistRepo)
	authService := auth.NewService(auth.TokenConfig{
		Secret:        cfg.Auth.JWTSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
		RememberMeTTL: cfg.Auth.RememberMeTTL,
	}, userService, sessionService)

	go sessionService.RunJanitor(ctx, janitorInterval)

	rateLimit := httpx.NewRateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	defer rateLimit.Stop()

	handler := newRouter(routerDeps{
		jwtSecret:    cfg.Auth.JWTSecret,
		corsOrigin:   cfg.HTTP.CORSOrigin,
		maxBodyBytes: cfg.HTTP.MaxBodyBytes,
		enableHSTS:   cfg.HTTP.EnableHSTS,
		books:        book.NewHTTPHandler(bookService),
		users:        user.NewHTTPHandler(userService),
		sessions:     session.NewHTTPHandler(sessionService),
		auth:         auth.NewHTTPHandler(authService, httpx.CookieOptions{Secure: cfg.Auth.CookieSecure}),
		blacklist:    sessionService,
		rateLimit:    rateLimit,
		ready:        ready,
	})

	httpServer := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.App.Addr).Str("env", cfg.App.Env).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
