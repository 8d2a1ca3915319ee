package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/internal/config"
)

// cli holds what the persistent pre-run resolved for the subcommands.
type cli struct {
	envFile    string
	configFile string
	jsonOutput bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "circulation",
		Short: "Library item circulation service",
		Long: `circulation keeps the status and hold queue of every library item
in an event store and serves loans, requests, returns and transfers over HTTP.

Configuration is read from defaults, an optional YAML file, an optional .env
file and CIRCULATION_* environment variables, in increasing precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file, skipped when absent")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(newServeCommand(c))
	root.AddCommand(newMigrateCommand(c))
	root.AddCommand(newItemCommand(c))
	root.AddCommand(newPatronCommand(c))
	root.AddCommand(newSimulateCommand(c))

	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	v, err := config.NewViper(c.envFile, c.configFile)
	if err != nil {
		return err
	}

	if c.cfg, err = config.Load(v); err != nil {
		return err
	}

	c.logger = newLogger(c.cfg, cmd.ErrOrStderr())

	return nil
}

func (c *cli) printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
