package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/internal/storage"
)

func newMigrateCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the events table and its indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.Open(cmd.Context(), c.cfg, storage.Observability{})
			if err != nil {
				return err
			}
			defer store.Close()

			if err = store.CreateSchema(cmd.Context()); err != nil {
				return err
			}

			c.printf(cmd, "created table %s on %s\n", store.TableName(), store.Driver)

			return nil
		},
	}
}
