// RAM usage source — used percentage of physical memory via gopsutil.
package source

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemorySource samples used physical memory as a percentage.
type MemorySource struct{}

// NewMemorySource creates a memory usage source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// Name returns the series identifier.
func (s *MemorySource) Name() string { return "memory" }

// Read returns the used-memory percentage.
func (s *MemorySource) Read(ctx context.Context) (float64, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return v.UsedPercent, nil
}

// IsAvailable returns true — memory metrics exist on all platforms.
func (s *MemorySource) IsAvailable() bool { return true }
