package main

import (
	"encoding/json"
	"fmt"

	"nekocare/internal/app"
	"nekocare/internal/repo"
	"nekocare/internal/service"

	"github.com/spf13/cobra"
)

var (
	feedHousehold int64
	feedCat       int64
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print a household's current feed as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if feedHousehold <= 0 {
			return fmt.Errorf("--household is required")
		}
		db, err := app.NewPostgres(cfg.PG.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		careRepo := repo.NewPGCareRepo(db)
		svc := service.NewCareService(careRepo, repo.NewPGThemeRepo(db), cfg.Care.Thresholds(), cfg.Care.PointsPerLog,
			service.Deps{Log: logger, Location: cfg.Care.Location()})
		feed, err := svc.Feed(cmd.Context(), feedHousehold, feedCat, nil)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(feed)
	},
}

func init() {
	feedCmd.Flags().Int64Var(&feedHousehold, "household", 0, "Household ID")
	feedCmd.Flags().Int64Var(&feedCat, "cat", 0, "Active cat ID (0 for none)")
}
