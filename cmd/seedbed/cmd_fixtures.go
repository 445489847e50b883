package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/forgo/seedbed/internal/model"
	"github.com/forgo/seedbed/internal/testing/fixtures"
)

var outputFormat string

// fixturesCmd prints the fixture sets that would be seeded
var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Print the fixture sets",
	Args:  cobra.NoArgs,
	RunE:  runFixtures,
}

func init() {
	fixturesCmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format: yaml or json")
}

func runFixtures(cmd *cobra.Command, args []string) error {
	sets, err := fixtures.Load(cfg.Seed.FixturesDir)
	if err != nil {
		return err
	}

	out := make(map[string][]model.Record, len(sets))
	for _, set := range sets {
		out[set.Name] = set.Records()
	}

	w := cmd.OutOrStdout()
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
