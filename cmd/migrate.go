package main

import (
	"github.com/spf13/cobra"

	"github.com/dtroode/regbot/database"
	"github.com/dtroode/regbot/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending submission ledger migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			if err := database.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
				return err
			}
			cmd.Printf("migrations applied to %s\n", redactDSN(cfg.Database.DSN))
			return nil
		},
	}
}
