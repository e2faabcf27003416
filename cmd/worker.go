package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal/session"
	sessionpg "github.com/vqminh/tour-booking/internal/session/postgres"
	"github.com/vqminh/tour-booking/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

// sessionExpiryCmd sweeps pending payment sessions past the TTL into
// expired. Expiry is a terminal status like any other, so a late provider
// notification for a swept session surfaces as a conflicting outcome
// instead of silently landing.
var sessionExpiryCmd = &cobra.Command{
	Use:   "session-expiry",
	Short: "Expire stale pending payment sessions",
	Long:  `Periodically transition pending payment sessions older than the configured TTL to expired.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSessionExpiryWorker()
	},
}

var sweepInterval time.Duration

func startSessionExpiryWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	sqlDB, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	store := session.NewStore(sessionpg.NewSessionRepository(gormDB), log)

	log.Info("session expiry worker started",
		"session_ttl", cfg.Payment.SessionTTL,
		"sweep_interval", sweepInterval)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			cutoff := time.Now().UTC().Add(-cfg.Payment.SessionTTL)
			if _, err := store.ExpirePending(ctx, cutoff); err != nil {
				log.Error("expiry sweep failed", "error", err)
			}
			cancel()
		case sig := <-sigChan:
			log.Info("received signal, shutting down session expiry worker", "signal", sig)
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", "error", err)
			}
			return
		}
	}
}

func init() {
	sessionExpiryCmd.Flags().DurationVar(&sweepInterval, "interval", time.Minute, "How often to sweep for stale sessions")
	workerCmd.AddCommand(sessionExpiryCmd)
}
