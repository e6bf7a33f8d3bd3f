package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThanimaVITC/thanima-connect/handlers"
	"github.com/ThanimaVITC/thanima-connect/internal/admin"
	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/application/repository"
	"github.com/ThanimaVITC/thanima-connect/internal/application/service"
	"github.com/ThanimaVITC/thanima-connect/internal/config"
	"github.com/ThanimaVITC/thanima-connect/internal/database"
	"github.com/ThanimaVITC/thanima-connect/internal/sessions"
	"github.com/ThanimaVITC/thanima-connect/internal/storage"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/ThanimaVITC/thanima-connect/pkg/metrics"
	"github.com/ThanimaVITC/thanima-connect/pkg/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// LOG_LEVEL applies before config is loaded so config errors are visible
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	logger.Infof("config loaded: env=%s mongo=%v storage=%s redis=%v", cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Storage.Backend, cfg.Redis.Host != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	checks := map[string]handlers.Check{}

	// Submissions: MongoDB when configured, process memory otherwise (dev only,
	// enforced by config validation).
	var repo repository.Repository
	var db *mongo.Database
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts, time.Second)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		db = client.Database(cfg.MongoDB.Database)
		mrepo := repository.NewMongoRepo(db.Collection(cfg.MongoDB.Collection), cfg.MongoDB.UniqueRegNo)
		if err := mrepo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure submission indexes: %v", err)
		}
		repo = mrepo
		checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		logger.Infof("submissions stored in %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	} else {
		logger.Warnf("MONGODB_URI not set: submissions are kept in memory and lost on restart")
		repo = repository.NewMemoryRepo(cfg.MongoDB.UniqueRegNo)
	}

	blobs, err := storage.New(ctx, cfg.Storage, db)
	if err != nil {
		return fmt.Errorf("init file storage: %w", err)
	}
	if blobs == nil {
		logger.Warnf("STORAGE_BACKEND=none: uploaded résumés are discarded")
	} else if p, ok := blobs.(storage.Pinger); ok {
		checks["storage"] = p.Ping
	}

	// Redis backs the session revocation list and the shared rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		sessions.SetBlacklistClient(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	secret := []byte(cfg.Admin.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warnf("ADMIN_SESSION_SECRET not set: using a random secret, admin sessions end on restart")
	}
	if cfg.Admin.Password == "" {
		logger.Warnf("ADMIN_PASSWORD not set: admin login is disabled")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(), gin.Recovery(), corsMiddleware(cfg.CORS.AllowedOrigins))

	var submitLimit []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			submitLimit = append(submitLimit, middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("submission rate limit: redis, %.2f rps burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		} else {
			submitLimit = append(submitLimit, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("submission rate limit: in-process, %.2f rps burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	validator := application.NewValidator(application.Limits{
		MaxFileSize:  cfg.Upload.MaxBytes,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})
	handlers.NewApplicationHandler(service.New(validator, repo, blobs), validator, cfg.Server.RequestTimeout).Register(r, submitLimit...)
	handlers.NewAdminHandler(admin.New(repo, blobs), cfg.Admin, secret, cfg.Server.RequestTimeout).Register(r)
	handlers.RegisterHealth(r, checks)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// corsMiddleware allows any origin when none (or "*") is configured.
// Explicit origins also get credentialed requests.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}
