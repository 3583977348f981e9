// Package source provides the sibling system-metric series sampled
// alongside the GPU counters: CPU, memory, and disk usage percentages.
// All of them use gopsutil for cross-platform readings.
package source

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUSource samples overall CPU busy percentage.
type CPUSource struct{}

// NewCPUSource creates a CPU usage source.
func NewCPUSource() *CPUSource {
	return &CPUSource{}
}

// Name returns the series identifier.
func (s *CPUSource) Name() string { return "cpu" }

// Read returns CPU usage since the previous read. gopsutil keeps the
// last-call baseline internally, so the sampling interval itself is the
// measurement window; the first tick reports 0.
func (s *CPUSource) Read(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

// IsAvailable returns true — CPU metrics exist on all platforms.
func (s *CPUSource) IsAvailable() bool { return true }
