package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/repository"
	"github.com/forgo/seedbed/internal/seed"
	"github.com/forgo/seedbed/internal/testing/fixtures"
)

var resetTables bool

// seedCmd seeds a store that is already running
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed fixture sets into the store at DB_URL",
	Long: `Connects to an existing store (DB_URL, or DB_HOST and DB_PORT), inserts
every fixture set and prints how many records each collection holds afterwards.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&resetTables, "reset", false, "Delete existing records from the fixture tables first")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sets, err := fixtures.Load(cfg.Seed.FixturesDir)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, database.FromConfig(cfg.Database))
	if err != nil {
		return err
	}
	defer db.Close()

	if resetTables {
		if err := repository.ClearTables(ctx, db, fixtures.Tables(sets)...); err != nil {
			return err
		}
	}

	seeder := seed.New(fixtures.Targets(db, sets),
		seed.WithLogger(logger),
		seed.WithConcurrency(cfg.Seed.Concurrency),
	)
	if err := seeder.SeedData(ctx); err != nil {
		return err
	}

	snap := seeder.TestData()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, len(snap[name]))
	}
	return nil
}
