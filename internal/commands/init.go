package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finsim-dev/finsim/internal/config"
)

func newInitCommand() *cobra.Command {
	var startYear int
	var startCash float64
	var seed int64

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default finsim.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, startYear, startCash, seed)
		},
	}

	cmd.Flags().IntVar(&startYear, "start-year", 0, "first simulated year")
	cmd.Flags().Float64Var(&startCash, "cash", 0, "starting cash balance")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible runs")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, startYear int, startCash float64, seed int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfg := config.Default()
	if startYear != 0 {
		cfg.Simulation.StartYear = startYear
	}
	if startCash != 0 {
		cfg.Simulation.StartCash = startCash
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}

	path := filepath.Join(dir, "finsim.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized finsim config at %s\n", path)
	return nil
}
