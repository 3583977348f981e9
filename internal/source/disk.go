// Disk usage source — used percentage of one mount point via gopsutil.
package source

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskSource samples used space of a single mount point as a percentage.
type DiskSource struct {
	mount string
}

// NewDiskSource creates a disk usage source for the given mount point.
func NewDiskSource(mount string) *DiskSource {
	return &DiskSource{mount: mount}
}

// Name returns the series identifier.
func (s *DiskSource) Name() string { return "disk" }

// Read returns the used-space percentage of the mount point.
func (s *DiskSource) Read(ctx context.Context) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, s.mount)
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}

// IsAvailable reports whether the mount point can be statted.
func (s *DiskSource) IsAvailable() bool {
	_, err := disk.Usage(s.mount)
	return err == nil
}
