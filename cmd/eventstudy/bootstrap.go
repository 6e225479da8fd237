package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/eventstudy/internal/report"
	"github.com/seenimoa/eventstudy/internal/study"
)

// --- Bootstrap Command ---

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap [results.csv]",
	Short: "Re-run summary and bootstrap inference on saved results",
	Long: `Read a results.csv written by "eventstudy run" and recompute the summary
statistics and bootstrap tests, for example with another seed or more
iterations, without fetching prices again.

Examples:
  eventstudy bootstrap out/results.csv --seed 7 --iterations 50000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyStudyFlags(cmd); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open results: %w", err)
		}
		defer f.Close()
		results, err := report.ReadResultsCSV(f)
		if err != nil {
			return err
		}

		opts := cfg.StudyOptions()
		if len(results) > 0 {
			opts.Benchmark = results[0].Benchmark
		}
		sum, err := study.Summarize(cmd.Context(), study.Outcome{Results: results}, opts,
			cfg.BootstrapEngine(), cfg.Bootstrap.Seed, cfg.Report.TopN)
		if err != nil {
			return err
		}
		fmt.Print(report.Text(sum, report.DefaultReportConfig()))
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().Int("top", 0, "number of best and worst events to list")
	addBootstrapFlags(bootstrapCmd)
}
