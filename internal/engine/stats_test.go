package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleworks/wave-runner/internal/engine"
	"github.com/ruleworks/wave-runner/internal/model"
)

func successResult(iteration int, latency time.Duration) model.RequestResult {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return model.RequestResult{
		Iteration: iteration,
		Success:   true,
		StartTime: start,
		EndTime:   start.Add(latency),
		Latency:   latency,
	}
}

func failedResult(iteration int, reason string) model.RequestResult {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return model.RequestResult{
		Iteration:     iteration,
		Success:       false,
		FailureReason: reason,
		StartTime:     start,
		EndTime:       start.Add(time.Second),
		Latency:       time.Second,
	}
}

func TestSummarizeCounts(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	results := []model.RequestResult{
		successResult(1, 100*time.Millisecond),
		successResult(1, 200*time.Millisecond),
		failedResult(1, model.ReasonTimeout),
		successResult(2, 300*time.Millisecond),
	}

	s := engine.Summarize(results, nil, start, end)

	assert.Equal(t, 4, s.TotalRequests)
	assert.Equal(t, 3, s.Successful)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, s.TotalRequests, s.Successful+s.Failed)
	assert.InDelta(t, 0.75, s.SuccessRate, 1e-9)
	assert.InDelta(t, 0.4, s.Throughput, 1e-9) // 4 requests / 10s

	require.Len(t, s.PerIteration, 2)
	assert.Equal(t, 1, s.PerIteration[0].Iteration)
	assert.Equal(t, 3, s.PerIteration[0].Total)
	assert.Equal(t, 2, s.PerIteration[0].Successful)
	assert.Equal(t, 1, s.PerIteration[0].Failed)
	assert.Equal(t, 2, s.PerIteration[1].Iteration)
	assert.Equal(t, 1, s.PerIteration[1].Total)
}

func TestSummarizeLatencyOverSuccessesOnly(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Second)

	// The failed request carries a 1s latency that must not pollute the
	// distribution.
	results := []model.RequestResult{
		successResult(1, 100*time.Millisecond),
		successResult(1, 200*time.Millisecond),
		failedResult(1, model.ReasonConnectionError),
	}

	s := engine.Summarize(results, nil, start, end)

	require.NotNil(t, s.Latency)
	assert.InDelta(t, 0.2, s.Latency.Max, 1e-9)
	assert.InDelta(t, 0.15, s.Latency.Mean, 1e-9)
	assert.InDelta(t, 0.15, s.Latency.Median, 1e-9)
	assert.InDelta(t, 0.1, s.Latency.Min, 1e-9)
}

func TestSummarizePercentileOrdering(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Second)

	var results []model.RequestResult
	for i := 1; i <= 100; i++ {
		results = append(results, successResult(1, time.Duration(i)*time.Millisecond))
	}

	s := engine.Summarize(results, nil, start, end)

	require.NotNil(t, s.Latency)
	assert.LessOrEqual(t, s.Latency.P95, s.Latency.P99)
	assert.LessOrEqual(t, s.Latency.P99, s.Latency.Max)

	// Nearest-rank on 100 ascending values: p95 -> element 95, p99 -> 99.
	assert.InDelta(t, 0.095, s.Latency.P95, 1e-9)
	assert.InDelta(t, 0.099, s.Latency.P99, 1e-9)
}

func TestSummarizeNearestRankSmallInputs(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Second)

	// A single success: every percentile is that one value. The naive
	// int(n*0.99) indexing would walk off the end here.
	s := engine.Summarize([]model.RequestResult{successResult(1, 50*time.Millisecond)}, nil, start, end)

	require.NotNil(t, s.Latency)
	assert.InDelta(t, 0.05, s.Latency.P95, 1e-9)
	assert.InDelta(t, 0.05, s.Latency.P99, 1e-9)
	assert.InDelta(t, 0.05, s.Latency.Median, 1e-9)
}

func TestSummarizeZeroSuccesses(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Second)

	results := []model.RequestResult{
		failedResult(1, model.ReasonTimeout),
		failedResult(1, model.ReasonTimeout),
	}

	s := engine.Summarize(results, nil, start, end)

	assert.Nil(t, s.Latency)
	assert.Equal(t, 2, s.TotalRequests)
	assert.Equal(t, 0, s.Successful)
	assert.Zero(t, s.SuccessRate)
	require.Len(t, s.PerIteration, 1)
	assert.Nil(t, s.PerIteration[0].Latency)
}

func TestSummarizeEmptyRun(t *testing.T) {
	start := time.Now()

	s := engine.Summarize(nil, nil, start, start)

	assert.Zero(t, s.TotalRequests)
	assert.Zero(t, s.SuccessRate)
	assert.Zero(t, s.Throughput)
	assert.Nil(t, s.Latency)
	assert.Empty(t, s.PerIteration)
}

func TestSummarizeResourcePeaks(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Second)

	samples := []model.ResourceSample{
		{Timestamp: start, CPUPercent: 10, MemoryPercent: 20, MemoryMB: 100},
		{Timestamp: start.Add(time.Second), CPUPercent: 150, MemoryPercent: 40, MemoryMB: 300},
		{Timestamp: start.Add(2 * time.Second), CPUPercent: 50, MemoryPercent: 30, MemoryMB: 200},
	}

	s := engine.Summarize(nil, samples, start, end)

	assert.InDelta(t, 150, s.MaxCPUPercent, 1e-9) // >100 is valid on multi-core
	assert.InDelta(t, 70, s.AvgCPUPercent, 1e-9)
	assert.InDelta(t, 300, s.MaxMemoryMB, 1e-9)
	assert.InDelta(t, 200, s.AvgMemoryMB, 1e-9)
	assert.InDelta(t, 40, s.MaxMemoryPercent, 1e-9)
}

func TestSummarizeDeterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Second)

	results := []model.RequestResult{
		successResult(2, 300*time.Millisecond),
		failedResult(1, model.ReasonTimeout),
		successResult(1, 100*time.Millisecond),
		successResult(1, 200*time.Millisecond),
	}
	samples := []model.ResourceSample{
		{Timestamp: start, CPUPercent: 30, MemoryMB: 120},
	}

	first := engine.Summarize(results, samples, start, end)
	second := engine.Summarize(results, samples, start, end)
	assert.Equal(t, first, second)

	// Reordering the inputs must not change the statistics.
	reordered := []model.RequestResult{results[3], results[1], results[0], results[2]}
	third := engine.Summarize(reordered, samples, start, end)
	assert.Equal(t, first, third)
}
