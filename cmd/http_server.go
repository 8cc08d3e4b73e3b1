package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	authpg "github.com/frahmantamala/hrms-portal/internal/auth/postgres"
	"github.com/frahmantamala/hrms-portal/internal/core/events"
	"github.com/frahmantamala/hrms-portal/internal/dashboard"
	"github.com/frahmantamala/hrms-portal/internal/employee"
	"github.com/frahmantamala/hrms-portal/internal/engagement"
	"github.com/frahmantamala/hrms-portal/internal/grievance"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/frahmantamala/hrms-portal/internal/hrprofile"
	"github.com/frahmantamala/hrms-portal/internal/leave"
	"github.com/frahmantamala/hrms-portal/internal/offer"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/transport/middleware"
	"github.com/frahmantamala/hrms-portal/internal/transport/rest"
	"github.com/frahmantamala/hrms-portal/internal/transport/swagger"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/frahmantamala/hrms-portal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that renders the portal pages`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "backend", deps.Config.Backend.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if _, err := swagger.Load(context.Background()); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	renderer, err := web.NewRenderer(web.Options{
		AppName:  config.UI.AppName,
		Debounce: config.UI.SearchDebounce,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	api := hrmsapi.NewClient(hrmsapi.Config{
		BaseURL:        config.Backend.BaseURL,
		RequestTimeout: config.Backend.RequestTimeout,
	}, lg)

	bus := events.NewEventBus(lg)
	authService := auth.NewService(authpg.NewSessionRepository(gormDB), api, bus, auth.Config{
		SessionTTL: config.Security.SessionTTL,
		JWTSecret:  config.Security.JWTSecret,
	}, lg)
	authService.SubscribeNotices(bus)

	base := transport.NewBaseHandler(lg, renderer, bus, authService)
	permissions := auth.NewPermissionChecker()

	profiles := hrprofile.NewService(api, lg)
	engagementService := engagement.NewService(api, permissions, lg)

	offerLimit := middleware.NewIPRateLimiter(config.RateLimit.OfferRequestsPerSecond, config.RateLimit.OfferBurst)
	if err := offerLimit.TrustProxies(config.Server.TrustedProxies); err != nil {
		_ = db.Close()
		return nil, err
	}

	handlers := rest.Handlers{
		Base: base,
		Auth: auth.NewHandler(base, authService, auth.CookieConfig{
			Name:   config.Security.SessionCookieName,
			Secure: config.Security.SecureCookies,
		}),
		Dashboard:  dashboard.NewHandler(base, dashboard.NewService(api, profiles, engagementService, lg)),
		Employees:  employee.NewHandler(base, employee.NewService(api, profiles, permissions, lg)),
		Engagement: engagement.NewHandler(base, engagementService),
		Grievances: grievance.NewHandler(base, grievance.NewService(api, permissions, lg)),
		Leaves:     leave.NewHandler(base, leave.NewService(api, lg)),
		Offer:      offer.NewHandler(base, offer.NewService(api, lg)),
		Health: rest.NewHealthHandler(map[string]rest.Pinger{
			"postgres": db,
			"backend":  rest.PingerFunc(api.Ping),
		}),
		OfferLimit: offerLimit,
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the session store through the pgx stdlib driver.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gormDB, nil
}
