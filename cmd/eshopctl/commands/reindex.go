package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/search"
	"github.com/Skotchmaster/eshop/internal/service"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every product into the Elasticsearch index",
	RunE:  runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.ESURL == "" {
		return errors.New("ES_URL is not set")
	}
	es, err := search.NewClient(ctx, search.Config{
		URL:      e.cfg.ESURL,
		Username: e.cfg.ESUser,
		Password: e.cfg.ESPassword,
	})
	if err != nil {
		return err
	}
	ix := &search.Index{ES: es, Name: e.cfg.ESProductsIndex}
	if err := ix.EnsureIndex(ctx); err != nil {
		return err
	}

	catalog := &service.CatalogService{Store: &repo.GormRepo{DB: e.db}, Events: events.Nop{}, Search: ix}
	n, err := catalog.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	e.logger.Info("reindex_done", "index", ix.Name, "count", n)
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products into %s\n", n, ix.Name)
	return nil
}
