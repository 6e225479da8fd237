package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/eventstudy/internal/earnings"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/providers"
	"github.com/seenimoa/eventstudy/internal/providers/fmp"
	"github.com/seenimoa/eventstudy/internal/report"
	"github.com/seenimoa/eventstudy/internal/study"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the event study over an earnings table",
	Long: `Load earnings announcements, compute the CAR of every event, summarise
beats and misses with bootstrap inference, print the report and write
results.csv, failures.csv, both charts and report.html to the output dir.

Examples:
  eventstudy run --input earnings.csv
  eventstudy run --input earnings.html --provider csvdir --out ./out/q3
  eventstudy run --source fmp --tickers AAPL,MSFT,NVDA --since 2023-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyStudyFlags(cmd); err != nil {
			return err
		}
		ctx := cmd.Context()

		table, err := loadEvents(ctx, cmd)
		if err != nil {
			return err
		}
		logger.Info().
			Int("events", len(table.Events)).
			Int("rejected", len(table.Rejected)).
			Msg("Earnings loaded")

		prices, err := providers.Prices(cfg)
		if err != nil {
			return err
		}
		orch := study.New(prices, study.WithLogger(infra.Component("study")))
		opts := cfg.StudyOptions()

		out, runErr := orch.Run(ctx, table.Events, opts)
		out.Failures = append(append(table.Rejected[:0:0], table.Rejected...), out.Failures...)

		// Inference runs detached from cancellation so a partial run still reports.
		sum, err := study.Summarize(context.WithoutCancel(ctx), out, opts, cfg.BootstrapEngine(), cfg.Bootstrap.Seed, cfg.Report.TopN)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}

		rcfg := report.DefaultReportConfig()
		if cfg.Report.Title != "" {
			rcfg.Title = cfg.Report.Title
		}
		fmt.Print(report.Text(sum, rcfg))

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Report.OutputDir
		}
		paths, err := report.WriteFiles(outDir, sum, rcfg)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info().Str("path", p).Msg("Wrote")
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringP("input", "i", "", "earnings table (.csv or .html)")
	runCmd.Flags().String("source", "file", "earnings source: file or fmp")
	runCmd.Flags().StringSlice("tickers", nil, "tickers to fetch from the earnings source")
	runCmd.Flags().String("since", "", "drop announcements before this date (fmp source)")
	runCmd.Flags().StringP("out", "o", "", "output directory (default: report.output_dir)")
	runCmd.Flags().Int("top", 0, "number of best and worst events to list")
	runCmd.Flags().Int("workers", 0, "concurrent events")
	addWindowFlags(runCmd)
	addBootstrapFlags(runCmd)
}

// loadEvents reads announcements from a file or from FMP.
func loadEvents(ctx context.Context, cmd *cobra.Command) (earnings.Table, error) {
	source, _ := cmd.Flags().GetString("source")
	switch source {
	case "file", "":
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			return earnings.Table{}, errors.New("--input is required for the file source")
		}
		return earnings.LoadFile(input)

	case "fmp":
		tickers, _ := cmd.Flags().GetStringSlice("tickers")
		if len(tickers) == 0 {
			return earnings.Table{}, errors.New("--tickers is required for the fmp source")
		}
		if cfg.Provider.FMPKey == "" {
			return earnings.Table{}, fmp.ErrNoAPIKey
		}
		var opts []fmp.Option
		if since, _ := cmd.Flags().GetString("since"); since != "" {
			t, err := utils.ParseDate(since)
			if err != nil {
				return earnings.Table{}, fmt.Errorf("--since: %w", err)
			}
			opts = append(opts, fmp.WithSince(t))
		}
		var src earnings.Source = providers.NewFMP(cfg, opts...)
		return src.Announcements(ctx, tickers)

	default:
		return earnings.Table{}, fmt.Errorf("unknown earnings source %q (file, fmp)", source)
	}
}

// --- Shared flags ---

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("benchmark", "", "benchmark ticker (default: study.benchmark)")
	cmd.Flags().Int("before", 0, "calendar days before the announcement")
	cmd.Flags().Int("after", 0, "calendar days after the announcement")
	cmd.Flags().Bool("simple", false, "use simple instead of log returns")
	cmd.Flags().String("provider", "", "price provider: yfinance, csvdir or fmp")
	cmd.Flags().String("data-dir", "", "price directory for the csvdir provider")
}

func addBootstrapFlags(cmd *cobra.Command) {
	cmd.Flags().Int("iterations", 0, "bootstrap iterations")
	cmd.Flags().Uint64("seed", 0, "bootstrap seed")
	cmd.Flags().Int("bootstrap-workers", 0, "bootstrap workers")
}

// applyStudyFlags copies explicitly set flags over the config and validates it.
func applyStudyFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if fl := f.Lookup(name); fl != nil && fl.Changed {
			apply()
		}
	}

	set("benchmark", func() { cfg.Study.Benchmark, _ = f.GetString("benchmark") })
	set("before", func() { cfg.Study.WindowBefore, _ = f.GetInt("before") })
	set("after", func() { cfg.Study.WindowAfter, _ = f.GetInt("after") })
	set("simple", func() {
		simple, _ := f.GetBool("simple")
		cfg.Study.UseLogReturns = !simple
	})
	set("workers", func() { cfg.Study.Workers, _ = f.GetInt("workers") })
	set("provider", func() { cfg.Provider.Name, _ = f.GetString("provider") })
	set("data-dir", func() { cfg.Provider.DataDir, _ = f.GetString("data-dir") })
	set("iterations", func() { cfg.Bootstrap.Iterations, _ = f.GetInt("iterations") })
	set("seed", func() { cfg.Bootstrap.Seed, _ = f.GetUint64("seed") })
	set("bootstrap-workers", func() { cfg.Bootstrap.Workers, _ = f.GetInt("bootstrap-workers") })
	set("top", func() { cfg.Report.TopN, _ = f.GetInt("top") })

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// parseDateArg parses a positional date argument.
func parseDateArg(s string) (time.Time, error) {
	t, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("announcement date: %w", err)
	}
	return t, nil
}
