package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iMarioChow/algo/config"
	"github.com/iMarioChow/algo/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "algo",
	Short: "Single-instrument signal backtester",
	Long: `algo replays a price series against a signal series and reports the
trades, equity curve and statistics of the resulting positions.

It provides tools for:
  - Backtesting with signal-driven or risk-managed exits
  - Sweeping risk parameters over a grid
  - Journaling runs to SQLite or CSV and exporting them to Org mode`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logLevel)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON, optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
}

// loadConfig returns the --config file, or the defaults without one. A
// logging.level from the file applies unless --log-level was given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") && cfg.Logging.Level != "" {
		l, err := logging.New(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		log = l
	}
	log.Debug("config loaded", zap.String("path", cfgFile))
	return cfg, nil
}
