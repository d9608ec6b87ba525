/*
PURPOSE:
  Writes per-request results and resource samples to CSV files.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - One results CSV row per request, one resources CSV row per sample.
  - Files are per-run (caller stamps the names with the run start time).

  Implementation-discovered:
  - The downstream visualizer globs results_*.csv / resources_*.csv, so
    column names must stay aligned with the summary vocabulary.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.RequestResult, internal/model.ResourceSample

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Mutex-guarded; the engine may eventually write from multiple spots.

USAGE:
  w, err := output.NewResultsWriter("results_20240101_120000.csv")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion together.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when the model structs change.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ruleworks/wave-runner/internal/model"
)

// ResultsWriter handles writing per-request results to a CSV file.
type ResultsWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewResultsWriter creates a new ResultsWriter.
// It overwrites the file if it exists.
func NewResultsWriter(path string) (*ResultsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{
		"iteration", "prompt_index", "worker_id", "prompt",
		"success", "status_code", "failure_reason",
		"latency_seconds", "start_time", "end_time",
		"response", "session_id",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &ResultsWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (rw *ResultsWriter) Write(r model.RequestResult) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	status := ""
	if r.StatusCode != 0 {
		status = strconv.Itoa(r.StatusCode)
	}

	record := []string{
		strconv.Itoa(r.Iteration),
		strconv.Itoa(r.PromptIndex),
		strconv.Itoa(r.WorkerID),
		r.Prompt,
		strconv.FormatBool(r.Success),
		status,
		r.FailureReason,
		fmt.Sprintf("%.4f", r.Latency.Seconds()),
		r.StartTime.Format(time.RFC3339Nano),
		r.EndTime.Format(time.RFC3339Nano),
		r.Response,
		r.SessionID,
	}

	if err := rw.writer.Write(record); err != nil {
		return err
	}
	rw.writer.Flush()
	return rw.writer.Error()
}

// Close closes the underlying file.
func (rw *ResultsWriter) Close() error {
	rw.writer.Flush()
	return rw.file.Close()
}

// ResourceWriter handles writing resource samples to a CSV file.
type ResourceWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewResourceWriter creates a new ResourceWriter.
func NewResourceWriter(path string) (*ResourceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{"timestamp", "cpu_percent", "memory_percent", "memory_mb", "cpu_count"}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &ResourceWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single resource sample to the CSV file.
// It is thread-safe.
func (rw *ResourceWriter) Write(s model.ResourceSample) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	record := []string{
		s.Timestamp.Format(time.RFC3339Nano),
		fmt.Sprintf("%.2f", s.CPUPercent),
		fmt.Sprintf("%.2f", s.MemoryPercent),
		fmt.Sprintf("%.2f", s.MemoryMB),
		strconv.Itoa(s.CPUCount),
	}

	if err := rw.writer.Write(record); err != nil {
		return err
	}
	rw.writer.Flush()
	return rw.writer.Error()
}

// Close closes the underlying file.
func (rw *ResourceWriter) Close() error {
	rw.writer.Flush()
	return rw.file.Close()
}
