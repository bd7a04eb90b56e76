package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/supakorn-kn/go-book-store/env"
	"github.com/supakorn-kn/go-book-store/models/books"
	"github.com/supakorn-kn/go-book-store/mongodb"
	"github.com/supakorn-kn/go-book-store/ratelimit"
)

func main() {

	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {

	cfg, err := env.GetEnv()
	if err != nil {
		return err
	}

	setupLogger(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoDB.ConnectTimeout)
	conn, err := mongodb.InitConnection(connectCtx, cfg.MongoDB.ConnectionURI(), cfg.MongoDB.DB)
	cancel()
	if err != nil {
		return err
	}

	slog.Info("Connected to MongoDB", "db", cfg.MongoDB.DB)

	defer func() {

		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := conn.Disconnect(disconnectCtx); err != nil {
			slog.Error("Disconnect MongoDB failed", "error", err)
			return
		}

		slog.Info("Disconnected from MongoDB")
	}()

	booksModel, err := books.NewBooksModel(ctx, conn, cfg.Books.PageSize)
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeLimiter()

	engine, err := newEngine(cfg, booksModel, conn.Ping, limiter)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {

		slog.Info("Server started", "addr", server.Addr, "mode", cfg.Server.Mode)

		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err

	case <-ctx.Done():
		slog.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("Server stopped")

	return nil
}

func setupLogger(cfg env.LogConfig) {

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}

// newLimiter returns a nil limiter when rate limiting is off. The returned func releases the backend.
func newLimiter(ctx context.Context, cfg *env.Env) (ratelimit.Limiter, func(), error) {

	if !cfg.RateLimit.Enabled {
		return nil, func() {}, nil
	}

	if cfg.RateLimit.Backend == env.RedisBackend {

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}

		slog.Info("Connected to Redis", "addr", cfg.Redis.Addr)

		closeClient := func() {
			if err := client.Close(); err != nil {
				slog.Error("Close Redis client failed", "error", err)
			}
		}

		return ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), closeClient, nil
	}

	limiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.RunSweeper(ctx, cfg.RateLimit.Window)

	return limiter, func() {}, nil
}
