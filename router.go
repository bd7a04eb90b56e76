package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-book-store/apis"
	booksAPI "github.com/supakorn-kn/go-book-store/apis/books"
	"github.com/supakorn-kn/go-book-store/env"
	"github.com/supakorn-kn/go-book-store/errors"
	"github.com/supakorn-kn/go-book-store/middleware"
	"github.com/supakorn-kn/go-book-store/objects"
	"github.com/supakorn-kn/go-book-store/ratelimit"
)

type healthCheck func(ctx context.Context) error

// newEngine assembles the middleware chain and routes. A nil limiter turns rate limiting off.
// Client IPs come from the socket unless the peer is a configured trusted proxy.
func newEngine(cfg *env.Env, store booksAPI.BookStore, ping healthCheck, limiter ratelimit.Limiter) (*gin.Engine, error) {

	g := gin.New()
	if err := g.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}

	g.Use(
		gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
			apis.AbortWithError(ctx, fmt.Errorf("panic recovered: %v", recovered))
		}),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORS.Origins(), cfg.CORS.AllowCredentials),
	)

	if limiter != nil {
		g.Use(middleware.RateLimit(limiter))
	}

	g.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
		g.Static("/public", cfg.Server.StaticDir)
	}

	g.GET("/health", func(ctx *gin.Context) {

		if err := ping(ctx.Request.Context()); err != nil {
			apis.AbortWithError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, apis.NewAPIResponse(http.StatusOK, gin.H{"status": "ok"}, "Service is healthy"))
	})

	api := booksAPI.NewBooksAPI(store, cfg.Books.PageSize, cfg.Books.MaxPageSize)
	apis.RegisterCrudAPI[objects.Book](api, g.Group("/api/book"), booksAPI.Routes)

	g.NoRoute(func(ctx *gin.Context) {
		apis.AbortWithError(ctx, errors.RouteNotFoundError.New(ctx.Request.Method, ctx.Request.URL.Path))
	})

	return g, nil
}
