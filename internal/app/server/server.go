package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"netpay/internal/domain/audit"
	"netpay/internal/domain/payroll"
	"netpay/internal/domain/templates"
	"netpay/internal/platform/cache"
	"netpay/internal/platform/config"
	cryptoutil "netpay/internal/platform/crypto"
	"netpay/internal/platform/db"
	"netpay/internal/platform/logger"
	"netpay/internal/platform/metrics"
	"netpay/internal/transport/http/api"
	audithandler "netpay/internal/transport/http/handlers/audit"
	authhandler "netpay/internal/transport/http/handlers/auth"
	payrollhandler "netpay/internal/transport/http/handlers/payroll"
	"netpay/internal/transport/http/middleware"
)

// tokenRatePerMinute bounds credential guessing per source address.
const tokenRatePerMinute = 10

// Deps are the collaborators the router is built from. Pool and Redis are
// optional.
type Deps struct {
	Config    config.Config
	Logger    *zap.Logger
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Templates templates.Store
	Crypto    *cryptoutil.Service
	Metrics   *metrics.Collector
}

func Run() error {
	cfg := config.Load()
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return err
	}

	deps := Deps{
		Config:    cfg,
		Logger:    log,
		Templates: templates.NewMemoryStore(),
		Crypto:    crypto,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	if cfg.PersistenceEnabled() {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		deps.Pool = pool
	} else {
		log.Warn("DATABASE_URL not set; saved records, payslips and exports are disabled")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 5, 2*time.Second)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		deps.Redis = rdb
		deps.Templates = templates.NewRedisStore(rdb, cfg.TemplateTTL)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("netpay server listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if d.Templates == nil {
		d.Templates = templates.NewMemoryStore()
	}

	var store payroll.StoreAPI
	var idem middleware.Idempotency
	var recorder audit.Recorder
	var auditService *audit.Service
	if d.Pool != nil {
		store = payroll.NewStore(d.Pool)
		idem = middleware.NewIdempotencyStore(d.Pool)
		auditService = audit.New(d.Pool)
		recorder = auditService
	}
	service := payroll.NewService(store, d.Templates, d.Crypto, d.Metrics)

	router := chi.NewRouter()
	router.Use(middleware.RequestID(log))
	router.Use(middleware.Logger(d.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(d.Config.IsProduction()))
	router.Use(middleware.BodyLimit(d.Config.MaxBodyBytes))
	router.Use(middleware.Auth(d.Config.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if d.Pool != nil {
			if err := d.Pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if d.Redis != nil {
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if d.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, d.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(
			d.Config.JWTSecret,
			d.Config.APIClientID,
			d.Config.APIClientSecretHash,
			d.Config.APIClientTOTPSecret,
			d.Config.TokenTTL,
		)
		authHandler.RegisterRoutes(r, tokenRatePerMinute)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(d.Config.RateLimitPerMinute))
			payrollHandler := payrollhandler.NewHandler(service, idem, recorder)
			payrollHandler.RegisterRoutes(r)

			auditHandler := audithandler.NewHandler(auditService)
			auditHandler.RegisterRoutes(r)
		})
	})

	return router
}
