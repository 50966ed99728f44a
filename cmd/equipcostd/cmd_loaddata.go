package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadDataCmd = &cobra.Command{
	Use:   "load-data",
	Short: "Create the schema and populate it with a synthetic fleet",
	Long:  `Equivalent to running init-db followed by generate-data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDBCmd.RunE(cmd, args); err != nil {
			return fmt.Errorf("load-data: %w", err)
		}
		if err := generateDataCmd.RunE(cmd, args); err != nil {
			return fmt.Errorf("load-data: %w", err)
		}
		return nil
	},
}
