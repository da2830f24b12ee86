package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/price-tracker/app/bootstrap"
	"github.com/price-tracker/app/config"
)

var (
	configPath string
	app        *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "pricectl",
	Short: "Maintenance commands for the price tracker store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		logger, err := bootstrap.NewLogger(cfg)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		a, err := bootstrap.New(cmd.Context(), cfg, logger)
		if err != nil {
			return eris.Wrap(err, "init services")
		}
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app == nil {
			return
		}
		app.Close()
		_ = app.Logger.Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if app != nil {
			app.Logger.Error("pricectl failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
