// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pressroom/internal/auth"
	"pressroom/internal/cache"
	"pressroom/internal/category"
	"pressroom/internal/config"
	"pressroom/internal/database"
	"pressroom/internal/handlers"
	"pressroom/internal/markdown"
	"pressroom/internal/media"
	"pressroom/internal/metrics"
	"pressroom/internal/middleware"
	"pressroom/internal/post"
	"pressroom/internal/render"
	"pressroom/internal/router"
	"pressroom/internal/storage"
	"pressroom/internal/store"
)

var (
	// Serve flags
	skipMigrate bool
	seedOnStart bool
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "seed sample data on start (always on in development)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	render.ExposeErrorDetail(!cfg.IsProduction())

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	if seedOnStart || cfg.IsDev() {
		if err := database.Seed(ctx, db, cfg.AdminPassword); err != nil {
			return err
		}
	}

	m := metrics.New()

	// Valkey backs the response cache and the token revocation list. Outside
	// production the API runs without it.
	valkey, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword, 0)
	var (
		jsonCache   *cache.JSONCache
		revocations auth.Revocations
	)
	switch {
	case err == nil:
		defer valkey.Close()
		jsonCache = cache.New(valkey, cfg.CacheTTL, m)
		revocations = auth.NewRedisRevocations(valkey)
	case cfg.IsProduction():
		return err
	default:
		zap.L().Warn("valkey unavailable, running without cache and with in-memory token revocation", zap.Error(err))
		revocations = auth.NewMemoryRevocations()
	}

	backend, uploadDir, err := newBackend(cfg)
	if err != nil {
		return err
	}

	// Initialize data stores.
	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	posts := store.NewPostStore(db)
	mediaStore := store.NewMediaStore(db)
	stats := store.NewStatsStore(db)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, revocations)
	manager := category.NewManager(categories, category.WithOnChange(jsonCache.CategoriesChanged))
	postService := post.NewService(posts, categories,
		post.WithRenderer(markdown.New(markdown.DefaultStyle)),
		post.WithOnChange(jsonCache.PostsChanged),
	)
	mediaService := media.NewService(mediaStore, backend, cfg.MaxFileSize)

	limiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	defer limiter.Stop()

	checks := map[string]handlers.Pinger{"database": db}
	if valkey != nil {
		checks["valkey"] = pingRedis(valkey)
	}

	r := router.New(router.Deps{
		Tokens:      tokens,
		Users:       users,
		Metrics:     m,
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		HSTS:        cfg.IsProduction(),
		UploadDir:   uploadDir,
		Auth:        handlers.NewAuth(users, tokens),
		Posts:       handlers.NewPosts(postService),
		Categories:  handlers.NewCategories(manager, jsonCache),
		Media:       handlers.NewMedia(mediaService),
		Dashboard:   handlers.NewDashboard(stats, jsonCache),
		UserAdmin:   handlers.NewUsers(users),
		Health:      handlers.NewHealth(checks),
	})

	// Uploads bound the read timeout; the write timeout covers slow
	// dashboard aggregates.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting", zap.String("addr", cfg.Addr()), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		zap.L().Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zap.L().Info("server stopped gracefully")
	return nil
}

// newBackend picks the file store. Local storage also returns the
// directory the router should serve under /uploads.
func newBackend(cfg *config.Config) (storage.Backend, string, error) {
	if cfg.StorageDriver == "s3" {
		s3, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		zap.L().Info("s3 storage configured", zap.String("endpoint", cfg.S3Endpoint), zap.String("bucket", cfg.S3Bucket))
		return s3, "", nil
	}

	local, err := storage.NewLocal(cfg.UploadDir, strings.TrimRight(cfg.PublicBaseURL, "/")+"/uploads")
	if err != nil {
		return nil, "", err
	}
	zap.L().Info("local storage configured", zap.String("dir", local.Dir()))
	return local, local.Dir(), nil
}

func pingRedis(client *redis.Client) handlers.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
