/*
PURPOSE:
  Aggregator: reduces per-request results and resource samples into a
  RunSummary with latency percentiles, throughput, and resource peaks.

REQUIREMENTS:
  User-specified:
  - Success rate, mean/median/min/max/p95/p99 latency, throughput.
  - Per-iteration breakdown for degradation analysis.
  - Resource peaks and averages.

  Implementation-discovered:
  - Latency stats cover successful requests only; failures count toward
    totals and success rate but contribute no latency.
  - Zero-success runs must yield nil latency stats, never a panic.
  - Percentiles use the nearest-rank method: on the ascending sort of n
    values, percentile q is element ceil(q*n)-1 (0-based, clamped).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes/produces: internal/model types.

ERROR HANDLING:
  - None. Pure reduction; degenerate inputs produce zero values.

IMPLEMENTATION RULES:
  - Deterministic: same inputs yield an identical summary, regardless of
    input ordering.
  - No side effects; callers own persistence and logging.

USAGE:
  summary := engine.Summarize(results, samples, start, end)

SELF-HEALING INSTRUCTIONS:
  - If a new percentile is needed, add a field and reuse percentile().

RELATED FILES:
  - internal/model/types.go
  - internal/engine/runner.go

MAINTENANCE:
  - Keep the percentile method in sync with its tests.
*/

package engine

import (
	"math"
	"sort"
	"time"

	"github.com/ruleworks/wave-runner/internal/model"
)

// Summarize reduces a run's observations into a RunSummary. It is a pure
// function: the ordering of results and samples does not affect the
// computed statistics. The Workers/Iterations echo fields are left for
// the caller to fill from its configuration.
func Summarize(results []model.RequestResult, samples []model.ResourceSample, start, end time.Time) model.RunSummary {
	s := model.RunSummary{
		TotalRequests: len(results),
		StartedAt:     start,
		EndedAt:       end,
	}

	s.DurationSeconds = end.Sub(start).Seconds()

	var successLatencies []float64
	perIteration := make(map[int][]model.RequestResult)

	for _, r := range results {
		perIteration[r.Iteration] = append(perIteration[r.Iteration], r)
		if r.Success {
			s.Successful++
			successLatencies = append(successLatencies, r.Latency.Seconds())
		} else {
			s.Failed++
		}
	}

	if s.TotalRequests > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.TotalRequests)
	}
	if s.DurationSeconds > 0 {
		s.Throughput = float64(s.TotalRequests) / s.DurationSeconds
	}

	s.Latency = latencyStats(successLatencies)

	iterations := make([]int, 0, len(perIteration))
	for it := range perIteration {
		iterations = append(iterations, it)
	}
	sort.Ints(iterations)

	for _, it := range iterations {
		group := perIteration[it]
		is := model.IterationStats{
			Iteration: it,
			Total:     len(group),
		}
		var lats []float64
		for _, r := range group {
			if r.Success {
				is.Successful++
				lats = append(lats, r.Latency.Seconds())
			} else {
				is.Failed++
			}
		}
		is.Latency = latencyStats(lats)
		s.PerIteration = append(s.PerIteration, is)
	}

	if len(samples) > 0 {
		var sumCPU, sumMemPct, sumMemMB float64
		for _, sm := range samples {
			sumCPU += sm.CPUPercent
			sumMemPct += sm.MemoryPercent
			sumMemMB += sm.MemoryMB
			s.MaxCPUPercent = math.Max(s.MaxCPUPercent, sm.CPUPercent)
			s.MaxMemoryPercent = math.Max(s.MaxMemoryPercent, sm.MemoryPercent)
			s.MaxMemoryMB = math.Max(s.MaxMemoryMB, sm.MemoryMB)
		}
		n := float64(len(samples))
		s.AvgCPUPercent = sumCPU / n
		s.AvgMemoryPercent = sumMemPct / n
		s.AvgMemoryMB = sumMemMB / n
	}

	return s
}

// latencyStats computes the distribution over successful latencies in
// seconds. Returns nil when there are none, which the summary encodes as
// absent latency fields rather than zeros.
func latencyStats(latencies []float64) *model.LatencyStats {
	if len(latencies) == 0 {
		return nil
	}

	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	var sum float64
	for _, l := range sorted {
		sum += l
	}

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return &model.LatencyStats{
		Mean:   sum / float64(n),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
		P95:    percentile(sorted, 0.95),
		P99:    percentile(sorted, 0.99),
	}
}

// percentile returns the nearest-rank percentile of an ascending-sorted
// slice: element ceil(q*n)-1, clamped to the valid range.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	idx := int(math.Ceil(q*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}
