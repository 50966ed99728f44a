package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the schema for the configured database",
	Long: `Creates every table the analytical core depends on if it does not
already exist. The store's Open already runs this migration, so init-db
is idempotent and exists mainly to provision a fresh database up front.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := system.Store.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("init-db: %w", err)
		}
		fmt.Println("schema ready")
		return nil
	},
}
