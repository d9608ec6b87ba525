/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full load test.

REQUIREMENTS:
  User-specified:
  - Run the load test with -w/--workers and -i/--iterations overrides.
  - Exit 0 when the run completes, even with failed requests.

  Implementation-discovered:
  - Need to load config first, then layer flag overrides on top.
  - SIGINT/SIGTERM should cancel gracefully; collected data still lands.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner
  - Uses: internal/config

ERROR HANDLING:
  - Returns error only for configuration/setup failures (non-zero exit).

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Validate -> Run -> Print summary.

USAGE:
  wave-runner run -w 10 -i 5 -f prompts.csv

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ruleworks/wave-runner/internal/config"
	"github.com/ruleworks/wave-runner/internal/engine"
	"github.com/ruleworks/wave-runner/internal/model"
)

var (
	workersFlag        int
	iterationsFlag     int
	promptFileFlag     string
	outputDirFlag      string
	endpointFlag       string
	timeoutFlag        time.Duration
	delayFlag          time.Duration
	sampleIntervalFlag time.Duration
	maxPromptsFlag     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the load test",
	Long: `Executes the load test against the configured rule processor endpoint.
Each iteration dispatches exactly --workers concurrent requests and waits
for all of them before the next iteration starts, while a background
sampler records CPU and memory usage.

Per-request results, resource samples, and the aggregated summary are
saved under the output directory, name-stamped with the run start time
(results_<ts>.csv, resources_<ts>.csv, summary_<ts>.json).`,
	Example: `  # Run with defaults (20 workers, 3 iterations, uses wave_runner.yaml)
  wave-runner run

  # Light test
  wave-runner run -w 5 -i 2

  # Custom prompt file and output directory
  wave-runner run -f prompts.csv -o ./results --endpoint http://rp:8080/process`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides (only flags the user actually set)
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workersFlag
		}
		if cmd.Flags().Changed("iterations") {
			cfg.Iterations = iterationsFlag
		}
		if promptFileFlag != "" {
			cfg.PromptFile = promptFileFlag
		}
		if outputDirFlag != "" {
			cfg.OutputDir = outputDirFlag
		}
		if endpointFlag != "" {
			cfg.Endpoint = endpointFlag
		}
		if cmd.Flags().Changed("timeout") {
			cfg.RequestTimeout = timeoutFlag
		}
		if cmd.Flags().Changed("delay") {
			cfg.IterationDelay = delayFlag
		}
		if cmd.Flags().Changed("sample-interval") {
			cfg.SampleInterval = sampleIntervalFlag
		}
		if cmd.Flags().Changed("max-prompts") {
			cfg.MaxPrompts = maxPromptsFlag
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		// 3. Execution
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		outcome, err := engine.NewRunner(cfg).Run(ctx)
		if err != nil {
			return err
		}

		printSummary(&outcome.Summary)
		return nil
	},
}

// printSummary writes the human-readable run report to stdout, after the
// structured logs. Latency lines are omitted when no request succeeded.
func printSummary(s *model.RunSummary) {
	fmt.Printf("\nLoad test summary\n")
	fmt.Printf("  Total requests: %d (%d workers x %d iterations)\n", s.TotalRequests, s.Workers, s.Iterations)
	fmt.Printf("  Successful:     %d\n", s.Successful)
	fmt.Printf("  Failed:         %d\n", s.Failed)
	fmt.Printf("  Success rate:   %.1f%%\n", s.SuccessRate*100)
	fmt.Printf("  Duration:       %.2fs\n", s.DurationSeconds)
	fmt.Printf("  Throughput:     %.2f req/s\n", s.Throughput)

	if s.Latency != nil {
		fmt.Printf("  Latency (s):    avg=%.3f median=%.3f min=%.3f max=%.3f p95=%.3f p99=%.3f\n",
			s.Latency.Mean, s.Latency.Median, s.Latency.Min, s.Latency.Max, s.Latency.P95, s.Latency.P99)
	} else {
		fmt.Printf("  Latency:        n/a (no successful requests)\n")
	}

	fmt.Printf("  CPU:            avg=%.1f%% peak=%.1f%%\n", s.AvgCPUPercent, s.MaxCPUPercent)
	fmt.Printf("  Memory:         avg=%.1fMB peak=%.1fMB\n", s.AvgMemoryMB, s.MaxMemoryMB)

	for _, it := range s.PerIteration {
		if it.Latency != nil {
			fmt.Printf("  Iteration %d:    %d/%d ok, median=%.3fs p95=%.3fs\n",
				it.Iteration, it.Successful, it.Total, it.Latency.Median, it.Latency.P95)
		} else {
			fmt.Printf("  Iteration %d:    %d/%d ok\n", it.Iteration, it.Successful, it.Total)
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&workersFlag, "workers", "w", 20, "Concurrent requests per iteration")
	runCmd.Flags().IntVarP(&iterationsFlag, "iterations", "i", 3, "Number of iterations to run")
	runCmd.Flags().StringVarP(&promptFileFlag, "file", "f", "", "Input CSV file with prompts")
	runCmd.Flags().StringVarP(&outputDirFlag, "output", "o", "", "Output directory for results")
	runCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "Rule processor endpoint URL")
	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", 60*time.Second, "Per-request timeout")
	runCmd.Flags().DurationVar(&delayFlag, "delay", 500*time.Millisecond, "Pause between iterations")
	runCmd.Flags().DurationVar(&sampleIntervalFlag, "sample-interval", time.Second, "Resource sampling interval")
	runCmd.Flags().IntVar(&maxPromptsFlag, "max-prompts", 0, "Cap on prompts loaded from the file (0 = all)")
}
