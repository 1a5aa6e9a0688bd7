package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/config"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/db"
	apihttp "github.com/Dkbhardwaj07/personality-assessment-system/internal/http"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/llm"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/realtime"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/repository"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type profileStore interface {
	repository.ProfileRepository
	EnsureSchema(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, ping, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema", zap.Error(err), zap.String("driver", cfg.StoreDriver))
	}

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger,
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithTimeout(cfg.LLMTimeout),
	)
	scorer := service.NewLLMScorer(llmClient, logger)

	engine := service.NewAggregationEngine()
	if err := engine.Initialize(ctx, store); err != nil {
		logger.Fatal("bootstrap aggregates", zap.Error(err))
	}
	dashboard := service.NewDashboardViewModel(store)
	if err := dashboard.Refresh(ctx); err != nil {
		logger.Fatal("bootstrap dashboard", zap.Error(err))
	}
	logger.Info("aggregates bootstrapped", zap.Int("profiles", engine.Snapshot().SampleCount))

	hub := realtime.NewHub(logger, cfg.WSBuffer)
	defer hub.Close()

	var (
		publisher service.EventPublisher = hub
		limiter   service.SubmissionRateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, running single instance", zap.Error(err))
		} else {
			limiter = service.NewRedisRateLimiter(redisClient, cfg.SubmitRateWindow, cfg.SubmitRateMax)
			relay := realtime.NewRedisRelay(redisClient, cfg.RedisChannel, hub, logger, engine, dashboard)
			publisher = relay
			go func() {
				if err := relay.Run(ctx); err != nil {
					logger.Error("redis relay stopped", zap.Error(err))
				}
			}()
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewMemoryRateLimiter(cfg.SubmitRateWindow, cfg.SubmitRateMax)
	}

	submissions := service.NewSubmissionService(logger, store, scorer, publisher,
		service.WithRateLimiter(limiter),
		service.WithDuplicatePolicy(cfg.DuplicateEmailPolicy),
		service.WithProfileSinks(engine, dashboard),
	)

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	} else {
		logger.Warn("jwt secret not configured, recruiter routes are open")
	}

	router := apihttp.NewRouter(
		logger,
		apihttp.NewAssessmentHandler(logger, submissions, cfg.SubmitTimeout),
		apihttp.NewRecruiterHandler(logger, store, engine, dashboard, ping),
		realtime.NewWSHandler(hub, logger, cfg.WSPingInterval),
		apihttp.RouterOptions{JWT: jwtSvc, AllowOrigins: cfg.CORSAllowOrigins},
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		// Cerrar el hub corta los websockets; Shutdown no espera conexiones secuestradas.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
		zap.String("duplicate_policy", cfg.DuplicateEmailPolicy),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (profileStore, func(context.Context) error, func()) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err))
		}
		return repository.NewSQLiteProfileRepository(sqlDB), sqlDB.PingContext, func() { _ = sqlDB.Close() }
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, profiles are lost on restart")
		return repository.NewMemoryProfileRepository(), nil, func() {}
	default:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		ping := func(ctx context.Context) error { return db.Ping(ctx, pool) }
		return repository.NewPgProfileRepository(pool), ping, pool.Close
	}
}
