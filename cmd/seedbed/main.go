// Command seedbed provisions a disposable SurrealDB, seeds it with fixtures
// and keeps it running for manual or out-of-process testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forgo/seedbed/internal/config"
	"github.com/forgo/seedbed/internal/logging"
)

var (
	// Global flags
	verbose     bool
	fixturesDir string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "seedbed",
	Short: "Ephemeral SurrealDB with fixture seeding",
	Long: `seedbed starts a throwaway SurrealDB instance, seeds it with fixture sets
and publishes its address.

Configuration comes from the environment (DB_*, PROVISION_*, SEED_*, LOG_*).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			loaded.Log.Level = "debug"
		}
		if fixturesDir != "" {
			loaded.Seed.FixturesDir = fixturesDir
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&fixturesDir, "fixtures", "", "Fixture directory (default: embedded sets)")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(fixturesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
