/*
PURPOSE:
  High-level runner that orchestrates the load test.
  Runs N iterations of W concurrent requests, samples resources
  alongside, aggregates, and persists the artifacts.

REQUIREMENTS:
  User-specified:
  - Exactly W requests in flight per iteration, never more.
  - Iterations strictly sequential; wave k drains before wave k+1.
  - Prompts cycle modulo the loaded list, never erroring on a short list.
  - Results CSV, resources CSV, and summary JSON per run.

  Implementation-discovered:
  - The sampler must be fully joined before its samples are read.
  - Interrupt cancels further iterations but the in-flight wave drains
    and collected data is still persisted (no mid-wave abort).

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/run.go
  - Uses: internal/prompts, internal/engine (client, sampler, stats),
    internal/output
  - Dependencies: golang.org/x/sync/errgroup for the fan-out join.

ERROR HANDLING:
  - Setup failures (prompts unreadable, output dir, writers) are fatal
    and returned. Per-request failures are data, never errors.

IMPLEMENTATION RULES:
  - Workers write into distinct slots of a pre-sized wave slice; the
    single aggregating append happens after the join, so no locking.
  - Results are appended in iteration-then-worker order for the CSV.

USAGE:
  r := engine.NewRunner(cfg)
  outcome, err := r.Run(ctx)

SELF-HEALING INSTRUCTIONS:
  - If output files are missing, check persist() and the OutputDir perms.

RELATED FILES:
  - internal/engine/client.go
  - internal/engine/sampler.go
  - internal/engine/stats.go

MAINTENANCE:
  - Update if ramp-up schedules or retry policies are ever introduced.
*/

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruleworks/wave-runner/internal/config"
	"github.com/ruleworks/wave-runner/internal/model"
	"github.com/ruleworks/wave-runner/internal/output"
	"github.com/ruleworks/wave-runner/internal/prompts"
)

// Outcome bundles everything one run produced. Results are ordered by
// iteration, then worker slot.
type Outcome struct {
	Summary model.RunSummary
	Results []model.RequestResult
	Samples []model.ResourceSample
}

// Runner executes the full load test described by its configuration.
type Runner struct {
	cfg    *config.Config
	client *Client
}

// NewRunner creates a new Runner. The config must already be validated.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		client: NewClient(cfg),
	}
}

// Run executes all iterations and returns the collected results and the
// aggregated summary. Cancelling ctx stops new iterations from starting
// and aborts in-flight HTTP calls via their request contexts; there is no
// harder abort. The run still finalizes and persists whatever was
// collected.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	promptList, err := prompts.Load(r.cfg.PromptFile, r.cfg.MaxPrompts)
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", r.cfg.OutputDir, err)
	}

	totalPlanned := r.cfg.Workers * r.cfg.Iterations
	output.Logger.Info("starting load test",
		"endpoint", r.cfg.Endpoint,
		"workers", r.cfg.Workers,
		"iterations", r.cfg.Iterations,
		"total_requests", totalPlanned,
		"prompts", len(promptList),
	)
	if len(promptList) < totalPlanned {
		output.Logger.Info("prompt list shorter than total requests, cycling",
			"prompts", len(promptList), "needed", totalPlanned)
	}

	sampler := NewSampler(r.cfg.SampleInterval)
	sampler.Start()

	start := time.Now()
	results := make([]model.RequestResult, 0, totalPlanned)

waves:
	for iteration := 1; iteration <= r.cfg.Iterations; iteration++ {
		select {
		case <-ctx.Done():
			output.Logger.Warn("run cancelled, skipping remaining iterations",
				"next_iteration", iteration)
			break waves
		default:
		}

		results = append(results, r.runWave(ctx, iteration, promptList)...)

		if iteration < r.cfg.Iterations && r.cfg.IterationDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.cfg.IterationDelay):
			}
		}
	}

	end := time.Now()

	// Join the sampler before touching its samples.
	sampler.Stop()
	samples := sampler.Samples()
	output.Logger.Info("resource sampling stopped", "samples", len(samples))

	summary := Summarize(results, samples, start, end)
	summary.Workers = r.cfg.Workers
	summary.Iterations = r.cfg.Iterations

	if err := r.persist(start, results, samples, summary); err != nil {
		return nil, err
	}

	return &Outcome{
		Summary: summary,
		Results: results,
		Samples: samples,
	}, nil
}

// runWave dispatches one iteration's worth of concurrent requests and
// blocks until all of them complete. Worker w handles prompt
// ((iteration-1)*W + w) mod len(prompts).
func (r *Runner) runWave(ctx context.Context, iteration int, promptList []string) []model.RequestResult {
	w := r.cfg.Workers
	wave := make([]model.RequestResult, w)
	waveStart := time.Now()

	var g errgroup.Group
	for worker := 0; worker < w; worker++ {
		worker := worker
		idx := ((iteration-1)*w + worker) % len(promptList)
		g.Go(func() error {
			res := r.client.Do(ctx, promptList[idx], idx)
			res.Iteration = iteration
			res.WorkerID = worker
			wave[worker] = res
			return nil
		})
	}
	g.Wait() // workers never return errors; failures live in the results

	succeeded := 0
	for _, res := range wave {
		if res.Success {
			succeeded++
		}
	}
	output.Logger.Info("iteration complete",
		"iteration", iteration,
		"requests", w,
		"succeeded", succeeded,
		"elapsed", time.Since(waveStart).Round(time.Millisecond),
	)

	return wave
}

// persist writes the per-run artifacts, name-stamped with the run start.
func (r *Runner) persist(start time.Time, results []model.RequestResult, samples []model.ResourceSample, summary model.RunSummary) error {
	ts := start.Format("20060102_150405")

	resultsPath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("results_%s.csv", ts))
	rw, err := output.NewResultsWriter(resultsPath)
	if err != nil {
		return fmt.Errorf("creating results file %s: %w", resultsPath, err)
	}
	defer rw.Close()
	for _, res := range results {
		if err := rw.Write(res); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}

	resourcePath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("resources_%s.csv", ts))
	sw, err := output.NewResourceWriter(resourcePath)
	if err != nil {
		return fmt.Errorf("creating resources file %s: %w", resourcePath, err)
	}
	defer sw.Close()
	for _, s := range samples {
		if err := sw.Write(s); err != nil {
			return fmt.Errorf("writing resource sample: %w", err)
		}
	}

	summaryPath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("summary_%s.json", ts))
	if err := output.WriteSummary(summaryPath, summary); err != nil {
		return err
	}

	output.Logger.Info("results saved",
		"results", resultsPath,
		"resources", resourcePath,
		"summary", summaryPath,
	)

	return nil
}
