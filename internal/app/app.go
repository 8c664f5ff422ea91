package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/catalog/internal/config"
	"github.com/simp-lee/catalog/internal/domain"
	"github.com/simp-lee/catalog/internal/middleware"
	"github.com/simp-lee/catalog/internal/module/product"
	"github.com/simp-lee/catalog/internal/telemetry"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine    *gin.Engine
	db        *gorm.DB // nil for the memory driver
	logger    *logger.Logger
	log       *slog.Logger
	telemetry *telemetry.Telemetry // nil when telemetry is disabled
	cfg       *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if timeout > 0 {
		srv.ReadTimeout = timeout
		srv.WriteTimeout = timeout
	}
	return srv
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, telemetry, the product store (migrating and seeding it
// as configured), the catalog service and handlers, middleware, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	// 1. Logger. Every line from here on carries the service identity.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()
	svcLog := config.ServiceLogger(log.Logger, cfg.Telemetry)

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		svcLog.Warn("insecure server config: debug mode on 0.0.0.0 exposes permissive CORS")
	}

	// 2. Telemetry.
	var tel *telemetry.Telemetry
	if cfg.Telemetry.Enabled {
		tel, err = telemetry.New(cfg.Telemetry, svcLog)
		if err != nil {
			return nil, fmt.Errorf("setup telemetry: %w", err)
		}
		defer func() {
			if !success {
				_ = tel.Shutdown(context.Background())
			}
		}()
	}

	// 3. Product store.
	store, db, err := openStore(&cfg.Database, svcLog)
	if err != nil {
		return nil, err
	}
	defer func() {
		if success || db == nil {
			return
		}
		if err := config.CloseDatabase(db); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	var (
		storeObs   product.StoreObserver
		catalogObs product.Observer
	)
	if tel != nil {
		storeObs, catalogObs = tel, tel
	}
	store = product.NewInstrumentedRepository(store, storeObs)

	if cfg.Database.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		err := product.Seed(ctx, store, svcLog)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	// 4. Manual dependency injection: store → service → handler → module.
	svc := product.NewProductService(store, svcLog, catalogObs)
	modules := []Module{product.NewModule(product.NewProductHandler(svc))}

	// 5. Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)
	if err != nil {
		return nil, err
	}

	engine.Use(
		middleware.Recovery(svcLog),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustRequestID,
		}),
		middleware.Logger(svcLog),
		middleware.CORSWithConfig(corsConfig),
	)
	if tel != nil {
		engine.Use(middleware.Metrics(tel))
	}

	// 6. Routes.
	deps := &RouteDeps{Modules: modules}
	if db != nil {
		deps.Database = func(ctx context.Context) error {
			return config.PingDatabase(ctx, db)
		}
	}
	if tel != nil {
		deps.MetricsPath = cfg.Telemetry.MetricsPath
		deps.Metrics = tel.Handler()
	}
	if err := RegisterRoutes(engine, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:    engine,
		db:        db,
		logger:    log,
		log:       svcLog,
		telemetry: tel,
		cfg:       cfg,
	}, nil
}

// Handler returns the HTTP handler serving the application routes.
func (a *App) Handler() http.Handler {
	return a.engine
}

// openStore builds the product store for the configured driver. The returned
// *gorm.DB is nil for the memory driver.
func openStore(cfg *config.DatabaseConfig, log *slog.Logger) (domain.ProductStore, *gorm.DB, error) {
	if cfg.Driver == config.DriverMemory {
		log.Info("using in-memory product store")
		return product.NewMemoryRepository(), nil, nil
	}

	db, err := config.SetupDatabase(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&domain.Product{}); err != nil {
			_ = config.CloseDatabase(db)
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	return product.NewProductRepository(db), db, nil
}

// resolveCORSConfig maps server.cors onto the middleware. With no allowlist,
// debug mode allows any origin and release mode denies cross-origin requests.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) (middleware.CORSConfig, error) {
	corsConfig := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials

	if cfg.MaxAge != "" {
		d, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return middleware.CORSConfig{}, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		corsConfig.MaxAge = d
	}

	return corsConfig, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a server
// error. It then shuts the server down gracefully, flushes telemetry and
// closes the database and logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := a.log
	if log == nil {
		log = slog.Default()
	}

	timeout, _ := time.ParseDuration(a.cfg.Server.Timeout)
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, timeout)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if runErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.close(shutdownCtx, log)

	return runErr
}

func (a *App) close(ctx context.Context, log *slog.Logger) {
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			log.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if err := config.CloseDatabase(a.db); err != nil {
			log.Error("database close error", slog.Any("error", err))
		} else {
			log.Info("database connection closed")
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}
