package main

import (
	"fmt"
	"os"
	"time"

	"nekocare/internal/app"
	"nekocare/internal/demo"
	"nekocare/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create a sample household in Postgres",
	Long: `Creates a household with a login, cats, task and notice definitions
and supplies. The embedded sample is used unless --file names a YAML seed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := demo.Default()
		if seedFile != "" {
			data, err := os.ReadFile(seedFile)
			if err != nil {
				return err
			}
			if seed, err = demo.Parse(data); err != nil {
				return err
			}
		}

		db, err := app.NewPostgres(cfg.PG.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		target := demo.Target{
			Households: repo.NewPGHouseholdRepo(db),
			Care:       repo.NewPGCareRepo(db),
			Users:      repo.NewPGUserRepo(db),
			Points:     repo.NewPGThemeRepo(db),
		}
		res, err := seed.Apply(cmd.Context(), target, time.Now().In(cfg.Care.Location()))
		if err != nil {
			return err
		}
		logger.Info("seeded", zap.Int64("household_id", res.Household.ID), zap.String("username", res.User.Username))
		fmt.Fprintf(cmd.OutOrStdout(), "household %d, user %q, %d cats\n", res.Household.ID, res.User.Username, len(res.Cats))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file")
}
