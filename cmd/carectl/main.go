// Command carectl is the operator CLI: migrations, demo seeding, feed
// inspection and a live change watcher.
package main

import (
	"fmt"
	"os"

	"nekocare/internal/config"
	"nekocare/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "time/tzdata"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "carectl",
	Short:         "Operate a nekocare deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["config"] == "none" {
			logger = zap.NewNop()
			return nil
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err = logging.New(cfg.App.Env, cfg.App.LogLevel)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, feedCmd, watchCmd, hashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "carectl:", err)
		os.Exit(1)
	}
}
