package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"odtplayground/internal/config"
	"odtplayground/internal/logger"
)

// cli carries what every subcommand needs once the root command has run.
type cli struct {
	cfg    *config.AppConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "api",
		Short: "JODReports Playground: merge ODT templates with JSON data",
		Long: `api serves the playground web page and HTTP API that merge ODT templates
with JSON data models. Without a subcommand it starts the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log, cfg.Location())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), c.cfg)
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newGenerateCmd(c),
		newValidateCmd(c),
		newSamplesCmd(c),
	)
	return root
}

// @title JODReports Playground API
// @version 1.0
// @description Merges ODT templates with JSON data models.
// @BasePath /
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
