package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/eshop/internal/db"
	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/transport"
	"github.com/Skotchmaster/eshop/internal/validation"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a user with the admin flag set",
	Long: `Create a user with the admin flag set.

The first admin has to come from somewhere: the register endpoint accepts
isAdmin but most deployments want the seed account created out of band.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	req := transport.RegisterRequest{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		IsAdmin:  true,
	}
	if err := validation.New().Validate(req); err != nil {
		return fmt.Errorf("invalid admin: %v", validation.Details(err))
	}

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

	users := &service.UserService{Store: &repo.GormRepo{DB: e.db}, Events: events.Nop{}}
	u, err := users.CreateUser(ctx, req)
	if errors.Is(err, service.ErrEmailTaken) {
		return fmt.Errorf("a user with email %s already exists", adminEmail)
	}
	if err != nil {
		return err
	}

	e.logger.Info("admin_created", "user_id", u.ID.String())
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
	return nil
}
