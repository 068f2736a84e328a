package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"nekocare/internal/app"
	"nekocare/internal/realtime"

	"github.com/spf13/cobra"
)

var watchHousehold int64

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow row changes published by the API",
	Long: `Subscribes to the Redis change channel and keeps a local mirror of the
changed rows, printing each change that moved the mirror forward.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := app.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mirror := realtime.NewMirror()
		out := cmd.OutOrStdout()
		err = realtime.NewRedisBroker(rdb, logger).Run(ctx, func(ev realtime.Event) {
			if watchHousehold != 0 && ev.HouseholdID != watchHousehold {
				return
			}
			if !mirror.Apply(ev) {
				return
			}
			fmt.Fprintf(out, "%s %-18s %-6s id=%d household=%d rows=%d\n",
				ev.At.Format("15:04:05"), ev.Table, ev.Op, ev.RowID, ev.HouseholdID, len(mirror.IDs(ev.Table)))
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().Int64Var(&watchHousehold, "household", 0, "Only show this household (0 for all)")
}

