package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/eshop/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := db.Migrate(e.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	e.logger.Info("schema_migrated", "driver", e.cfg.DatabaseDriver)
	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}
