package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/finsim-dev/finsim/internal/config"
	"github.com/finsim-dev/finsim/internal/eventlog"
	"github.com/finsim-dev/finsim/internal/metrics"
	"github.com/finsim-dev/finsim/internal/model"
	"github.com/finsim-dev/finsim/internal/scenario"
	"github.com/finsim-dev/finsim/internal/sim"
	"github.com/finsim-dev/finsim/internal/snapshot"
)

func newSimulateCommand() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Advance the simulation a number of years and print the events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "finsim.yaml", "config file")
	cmd.Flags().StringVar(&opts.snapshotPath, "snapshot", "", "state file to resume from and save to")
	cmd.Flags().StringVar(&opts.scenarioPath, "scenario", "", "career CSV (year,income,full_time) to preload")
	cmd.Flags().StringVar(&opts.eventLogPath, "events", "", "CSV file to append each year's events to")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics", "", "address to serve Prometheus metrics on (e.g. :9090)")
	cmd.Flags().IntVar(&opts.years, "years", 10, "number of years to simulate")
	cmd.Flags().Float64Var(&opts.income, "income", 0, "full-time salary earned each simulated year")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "log component activity to stderr")

	return cmd
}

type simulateOptions struct {
	configPath   string
	snapshotPath string
	scenarioPath string
	eventLogPath string
	metricsAddr  string
	years        int
	income       float64
	verbose      bool
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	if opts.years <= 0 {
		return errors.New("--years must be positive")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = config.Default()
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	collector := metrics.NewCollector()
	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(opts.metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	s := sim.New(cfg, logger, collector)

	startYear := cfg.Simulation.StartYear
	if opts.snapshotPath != "" {
		if data, err := os.ReadFile(opts.snapshotPath); err == nil {
			if err := snapshot.Apply(s, data); err != nil {
				return fmt.Errorf("restoring snapshot: %w", err)
			}
			startYear = s.CurrentYear() + 1
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading snapshot: %w", err)
		}
	}

	if opts.scenarioPath != "" {
		career, err := scenario.Load(opts.scenarioPath)
		if err != nil {
			return fmt.Errorf("loading scenario: %w", err)
		}
		for _, r := range career {
			s.AddEmploymentRecord(r)
		}
	}

	out := cmd.OutOrStdout()
	salary := decimal.NewFromFloat(opts.income).Round(2)
	for year := startYear; year < startYear+opts.years; year++ {
		if salary.IsPositive() {
			s.AddEmploymentRecord(model.EmploymentRecord{Year: year, AnnualIncome: salary, FullTime: true})
		}
		fmt.Fprintf(out, "=== Year %d (age %d) ===\n", year, year-s.BirthYear())
		events := s.AdvanceYear(year)
		for _, event := range events {
			fmt.Fprintf(out, "  %s\n", event)
		}
		if opts.eventLogPath != "" {
			if err := eventlog.Append(opts.eventLogPath, events); err != nil {
				return fmt.Errorf("writing event log: %w", err)
			}
		}
	}

	fmt.Fprintf(out, "\nCash:      %s\n", display(s.Cash()))
	fmt.Fprintf(out, "Net worth: %s\n", display(s.NetWorth()))

	if opts.snapshotPath != "" {
		data, err := snapshot.Encode(s)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		if err := os.WriteFile(opts.snapshotPath, data, 0o644); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Fprintf(out, "Saved state to %s\n", opts.snapshotPath)
	}
	return nil
}

func display(d decimal.Decimal) string {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
