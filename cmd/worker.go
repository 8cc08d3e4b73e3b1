package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/auth"
	authpg "github.com/frahmantamala/hrms-portal/internal/auth/postgres"
	"github.com/frahmantamala/hrms-portal/internal/core/events"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that keep the portal's own state tidy`,
}

var sessionWorkerCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Sweep expired sessions periodically",
	Long:  `Delete sessions whose expiry has passed on a fixed interval until stopped`,
	Run: func(cmd *cobra.Command, args []string) {
		startSessionWorker()
	},
}

var (
	sweepInterval time.Duration
	sweepOnce     bool
)

func startSessionWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	api := hrmsapi.NewClient(hrmsapi.Config{BaseURL: config.Backend.BaseURL, RequestTimeout: config.Backend.RequestTimeout}, lg)
	svc := auth.NewService(authpg.NewSessionRepository(gormDB), api, events.NewEventBus(lg), auth.Config{
		SessionTTL: config.Security.SessionTTL,
		JWTSecret:  config.Security.JWTSecret,
	}, lg)

	interval := sweepInterval
	if interval <= 0 {
		interval = config.Sessions.SweepInterval
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := svc.SweepExpired(sweepCtx); err != nil {
			lg.Error("session sweep failed", "error", err)
		}
	}

	sweep()
	if sweepOnce {
		return
	}

	lg.Info("session worker is running. Press Ctrl+C to stop.", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lg.Info("session worker stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func init() {
	sessionWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "sweep interval (overrides config)")
	sessionWorkerCmd.Flags().BoolVar(&sweepOnce, "once", false, "sweep a single time and exit")

	workerCmd.AddCommand(sessionWorkerCmd)
}
