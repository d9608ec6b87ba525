/*
PURPOSE:
  Defines the core data structures used throughout Wave Runner.
  These models represent per-request outcomes, resource samples, and
  the aggregated run summary.

REQUIREMENTS:
  User-specified:
  - Record latency, success/failure, and status per request.
  - Record timestamped CPU/memory samples.
  - Summarize a run into latency percentiles and throughput.

  Implementation-discovered:
  - Need JSON tags for the summary document and downstream tooling.
  - Latency stats must be omittable when a run has zero successes.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.
  - Pointer fields only where "absent" is meaningful (LatencyStats).

USAGE:
  res := model.RequestResult{...}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add field and update CSV/JSON writers.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"fmt"
	"time"
)

// Failure reasons recorded on a RequestResult. HTTP errors carry the
// status code, see HTTPErrorReason.
const (
	ReasonTimeout         = "timeout"
	ReasonConnectionError = "connection_error"
	ReasonInvalidResponse = "invalid_response"
)

// HTTPErrorReason formats the failure reason for a non-2xx response.
func HTTPErrorReason(code int) string {
	return fmt.Sprintf("http_error:%d", code)
}

// RequestResult represents the outcome of a single dispatched request.
// It is created by the request client and immutable once the call returns.
type RequestResult struct {
	Iteration   int    `json:"iteration"`    // wave number, 1-based
	WorkerID    int    `json:"worker_id"`    // concurrent slot, 0..W-1
	PromptIndex int    `json:"prompt_index"` // index into the loaded prompt list
	Prompt      string `json:"prompt"`

	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code,omitempty"` // 0 when no response was received
	FailureReason string `json:"failure_reason,omitempty"`

	Response  string `json:"response,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Latency   time.Duration `json:"latency_ns"`
}

// ResourceSample is one point-in-time system measurement taken by the
// resource sampler.
type ResourceSample struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"` // may exceed 100 on multi-core hosts
	MemoryPercent float64   `json:"memory_percent"`
	MemoryMB      float64   `json:"memory_mb"` // process RSS
	CPUCount      int       `json:"cpu_count"`
}

// LatencyStats describes the latency distribution of successful requests,
// in seconds. P95/P99 use the nearest-rank method (see engine.Summarize).
type LatencyStats struct {
	Mean   float64 `json:"avg_latency_seconds"`
	Median float64 `json:"median_latency_seconds"`
	Min    float64 `json:"min_latency_seconds"`
	Max    float64 `json:"max_latency_seconds"`
	P95    float64 `json:"p95_latency_seconds"`
	P99    float64 `json:"p99_latency_seconds"`
}

// IterationStats is the per-wave breakdown used for degradation analysis.
type IterationStats struct {
	Iteration  int           `json:"iteration"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Latency    *LatencyStats `json:"latency,omitempty"` // nil when the wave had no successes
}

// RunSummary is the reduction over all requests and resource samples for
// one invocation of the harness. Created once by the aggregator, never
// mutated afterwards.
type RunSummary struct {
	TotalRequests int     `json:"total_requests"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	SuccessRate   float64 `json:"success_rate"` // 0 when TotalRequests is 0

	Workers    int `json:"concurrent_workers"`
	Iterations int `json:"iterations"`

	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds float64   `json:"total_duration_seconds"`
	Throughput      float64   `json:"throughput_per_second"`

	Latency *LatencyStats `json:"latency,omitempty"` // nil when zero successes

	AvgCPUPercent    float64 `json:"avg_cpu_percent"`
	MaxCPUPercent    float64 `json:"max_cpu_percent"`
	AvgMemoryPercent float64 `json:"avg_memory_percent"`
	MaxMemoryPercent float64 `json:"max_memory_percent"`
	AvgMemoryMB      float64 `json:"avg_memory_mb"`
	MaxMemoryMB      float64 `json:"max_memory_mb"`

	PerIteration []IterationStats `json:"per_iteration"`
}
