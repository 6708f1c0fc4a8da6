// Command hexproxy builds the offline routing and factorization tables the
// proximity engine serves from: anchor snapping, T_hex top-K cell tables,
// and D_anchor category/brand tables.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hexproxy/engine/internal/errs"
)

var (
	logLevel   string
	configPath string
	logger     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hexproxy",
	Short: "Offline travel-time proximity factorization engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "hexproxy.yaml", "path to the engine YAML config")
	rootCmd.AddCommand(buildAnchorsCmd)
	rootCmd.AddCommand(computeTHexCmd)
	rootCmd.AddCommand(computeDAnchorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errs.ExitCode(err))
	}
}
