package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute best price, spread and trend for every product",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := app.Products.RecomputeAll(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "recompute products")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %d products\n", n)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print product and price counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := app.Products.Stats(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "product stats")
		}
		return printJSON(cmd, stats)
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every stored product to the Meilisearch index",
	Long: `Rebuild the product search index from the store.

Requires meilisearch.enabled and a reachable server. Index settings,
including the abbreviation synonyms, are applied before documents are sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.Index == nil {
			return eris.New("product index is not configured or unreachable")
		}
		products, err := app.Products.List(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "list products")
		}
		if err := app.Index.IndexAll(cmd.Context(), products); err != nil {
			return eris.Wrap(err, "index products")
		}
		app.Logger.Info("Reindexed products", zap.Int("count", len(products)))
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products\n", len(products))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd, statsCmd, reindexCmd)
}
