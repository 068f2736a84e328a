package main

import (
	"fmt"

	"nekocare/internal/app"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.RunMigrations(cfg.PG.DSN, cfg.PG.MigrationsDir); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := goose.OpenDBWithDriver("pgx", cfg.PG.DSN)
		if err != nil {
			return fmt.Errorf("goose open db: %w", err)
		}
		defer db.Close()
		return goose.Status(db, cfg.PG.MigrationsDir)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}
