package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/eventstudy/internal/analysis/abnormal"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/providers"
	"github.com/seenimoa/eventstudy/internal/report"
	"github.com/seenimoa/eventstudy/internal/study"
	"github.com/seenimoa/eventstudy/pkg/utils"
)

// --- Window Command ---

var windowCmd = &cobra.Command{
	Use:   "window [ticker] [date]",
	Short: "Show the abnormal returns around one announcement",
	Long: `Compute the event window of a single announcement and print each aligned
trading date with its asset, benchmark and abnormal return.

Examples:
  eventstudy window AAPL 2024-05-02
  eventstudy window MSFT 2024-04-25 --before 5 --after 5 --svg msft.svg`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyStudyFlags(cmd); err != nil {
			return err
		}
		ticker := utils.NormalizeTicker(args[0])
		day, err := parseDateArg(args[1])
		if err != nil {
			return err
		}

		prices, err := providers.Prices(cfg)
		if err != nil {
			return err
		}
		orch := study.New(prices, study.WithLogger(infra.Component("study")))
		w, err := orch.EventWindow(cmd.Context(), ticker, day, cfg.StudyOptions())
		if err != nil {
			return err
		}

		fmt.Printf("\n  %s vs %s, announcement %s, window [-%d, +%d]\n",
			w.Ticker, w.Benchmark, utils.FormatDate(w.AnnouncementDate), w.WindowBefore, w.WindowAfter)
		fmt.Printf("  %-10s %5s %10s %10s %10s\n", "Date", "Day", "Asset", "Benchmark", "Abnormal")
		for _, p := range w.Points {
			fmt.Printf("  %-10s %+5d %10s %10s %10s\n",
				utils.FormatDate(p.Date), p.DaysFromAnnouncement,
				utils.FormatPct(100*p.AssetReturn), utils.FormatPct(100*p.BenchmarkReturn), utils.FormatPct(100*p.AbnormalReturn))
		}
		if err := abnormal.CheckWindow(w); err != nil {
			logger.Warn().Err(err).Int("aligned", w.Aligned).Msg("Window has no observations")
		}
		fmt.Printf("  CAR: %s over %d observations\n\n", utils.FormatPct(abnormal.CAR(w)), len(w.Points))

		if path, _ := cmd.Flags().GetString("svg"); path != "" {
			svg := report.WindowChart(w, report.DefaultChartConfig())
			if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			logger.Info().Str("path", path).Msg("Wrote")
		}
		return nil
	},
}

func init() {
	addWindowFlags(windowCmd)
	windowCmd.Flags().String("svg", "", "write the window chart to this file")
}
