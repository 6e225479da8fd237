// eventstudy measures how stock prices react to earnings announcements.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/eventstudy/internal/config"
	"github.com/seenimoa/eventstudy/internal/infra"
	"github.com/seenimoa/eventstudy/internal/providers"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "eventstudy",
	Short: "Earnings announcement event study",
	Long: `eventstudy measures abnormal stock returns around earnings announcements.

For each announcement it compares the stock's daily returns with a benchmark
index inside a calendar-day window, sums the abnormal returns into a CAR and
tests the mean CAR of beats and misses with a seeded bootstrap.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = infra.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("eventstudy %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  eventstudy — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Benchmark:     %s\n", cfg.Study.Benchmark)
		fmt.Printf("    Window:        [-%d, +%d] calendar days\n", cfg.Study.WindowBefore, cfg.Study.WindowAfter)
		fmt.Printf("    Log returns:   %t\n", cfg.Study.UseLogReturns)
		fmt.Printf("    Workers:       %d\n", cfg.Study.Workers)
		fmt.Printf("    Bootstrap:     %d iterations, [%.1f, %.1f] pct, seed %d\n",
			cfg.Bootstrap.Iterations, cfg.Bootstrap.LowerPercentile, cfg.Bootstrap.UpperPercentile, cfg.Bootstrap.Seed)
		fmt.Printf("    Provider:      %s\n", cfg.Provider.Name)
		fmt.Printf("    Output dir:    %s\n", cfg.Report.OutputDir)
		if err := cfg.Validate(); err != nil {
			fmt.Printf("    ❌ invalid: %v\n", err)
		}
		fmt.Println()

		fmt.Println("  Providers:")
		reg, err := providers.NewRegistry(cfg)
		if err != nil {
			fmt.Printf("    ❌ %v\n", err)
		} else {
			for _, name := range reg.Names() {
				marker := " "
				if name == cfg.Provider.Name {
					marker = "*"
				}
				fmt.Printf("    %s %s\n", marker, name)
			}
		}
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
