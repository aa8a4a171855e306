package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/eshop/internal/config"
	"github.com/Skotchmaster/eshop/internal/db"
	"github.com/Skotchmaster/eshop/internal/logging"
)

var (
	envFile string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "eshopctl",
	Short: "Maintenance tasks for the eshop backend",
	Long: `eshopctl runs one-off maintenance tasks against the same database,
search index and settings the API server uses.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the environment")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Overall timeout for the command")
}

type env struct {
	cfg    config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func (e *env) Close() {
	if err := db.Close(e.db); err != nil {
		e.logger.Warn("db_close_failed", "error", err)
	}
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel).With("service", cfg.ServiceName, "tool", "eshopctl")
	slog.SetDefault(logger)

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: gdb}, nil
}
