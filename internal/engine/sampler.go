/*
PURPOSE:
  Background resource sampler.
  Polls CPU and memory usage on a fixed cadence while a run is active.

REQUIREMENTS:
  User-specified:
  - Sample host CPU%, process memory, and system memory% per tick.
  - Cooperative stop: after Stop() returns, no further samples appear.

  Implementation-discovered:
  - A single poll failure must not kill sampling (skip the tick).
  - The sample slice is only handed out after the goroutine has fully
    terminated, so readers never race the appender.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Dependencies: github.com/shirou/gopsutil/v4 (cpu, process)

ERROR HANDLING:
  - Probe errors are logged at Warn and the tick is skipped.
  - The sampler itself is never fatal to a run.

IMPLEMENTATION RULES:
  - One goroutine owns the slice; Stop() blocks on the done channel so
    Samples() is only read after a happens-before edge.
  - Probe function is injectable for tests.

USAGE:
  s := engine.NewSampler(time.Second)
  s.Start()
  ...
  s.Stop()
  samples := s.Samples()

SELF-HEALING INSTRUCTIONS:
  - If gopsutil fails on an exotic platform, the probe errors are logged
    and the run still completes with an empty sample series.

RELATED FILES:
  - internal/engine/runner.go
  - internal/model/types.go

MAINTENANCE:
  - Update the probe if new resource metrics are wanted.
*/

package engine

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/ruleworks/wave-runner/internal/model"
	"github.com/ruleworks/wave-runner/internal/output"
)

// ProbeFunc produces one resource sample. Injectable for tests.
type ProbeFunc func() (model.ResourceSample, error)

// Sampler polls resource usage on its own goroutine. The orchestrator
// must call Stop() before reading Samples().
type Sampler struct {
	interval time.Duration
	probe    ProbeFunc

	samples []model.ResourceSample

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSampler creates a sampler backed by the system probe.
func NewSampler(interval time.Duration) *Sampler {
	return NewSamplerWithProbe(interval, systemProbe())
}

// NewSamplerWithProbe creates a sampler with a custom probe.
func NewSamplerWithProbe(interval time.Duration, probe ProbeFunc) *Sampler {
	return &Sampler{
		interval: interval,
		probe:    probe,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sampling goroutine.
func (s *Sampler) Start() {
	go s.loop()
}

func (s *Sampler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			sample, err := s.probe()
			if err != nil {
				output.Logger.Warn("resource poll failed, skipping tick", "error", err)
				continue
			}
			s.samples = append(s.samples, sample)
		}
	}
}

// Stop signals the sampler and blocks until the goroutine has exited.
// An in-flight poll is allowed to complete; after Stop returns, no
// further samples are appended. Safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

// Samples returns the collected sample series. Only valid after Stop().
func (s *Sampler) Samples() []model.ResourceSample {
	return s.samples
}

// systemProbe builds a ProbeFunc over gopsutil. CPU percent is host-wide
// since the last call (mirrors interval-based utilization); memory is the
// harness process RSS plus its share of system memory.
func systemProbe() ProbeFunc {
	proc, procErr := process.NewProcess(int32(os.Getpid()))
	ncpu, _ := cpu.Counts(true)

	// Prime the CPU counter so the first tick reports a real delta.
	cpu.Percent(0, false)

	return func() (model.ResourceSample, error) {
		if procErr != nil {
			return model.ResourceSample{}, fmt.Errorf("resolving own process: %w", procErr)
		}

		pcts, err := cpu.Percent(0, false)
		if err != nil {
			return model.ResourceSample{}, fmt.Errorf("querying cpu: %w", err)
		}
		if len(pcts) == 0 {
			return model.ResourceSample{}, fmt.Errorf("querying cpu: empty result")
		}

		memPct, err := proc.MemoryPercent()
		if err != nil {
			return model.ResourceSample{}, fmt.Errorf("querying memory percent: %w", err)
		}

		memInfo, err := proc.MemoryInfo()
		if err != nil {
			return model.ResourceSample{}, fmt.Errorf("querying memory info: %w", err)
		}

		return model.ResourceSample{
			Timestamp:     time.Now(),
			CPUPercent:    pcts[0],
			MemoryPercent: float64(memPct),
			MemoryMB:      float64(memInfo.RSS) / 1024 / 1024,
			CPUCount:      ncpu,
		}, nil
	}
}
