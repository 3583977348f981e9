// AMD GPU backend — reads the amdgpu driver's sysfs busy-percent counters.
// The kernel refreshes these pseudo-files out of band; each read returns a
// small decimal integer string.
package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AMDGPU reads utilization counters for one card under /sys/class/drm.
type AMDGPU struct {
	path string

	mu   sync.Mutex
	name string
}

// NewAMDGPU creates a descriptor for the card at path
// (e.g. /sys/class/drm/card0). The display name starts as the path and is
// replaced if PCI name resolution succeeds.
func NewAMDGPU(path string) *AMDGPU {
	return &AMDGPU{path: path, name: path}
}

// Name returns the display name.
func (g *AMDGPU) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

// setName replaces the display name once resolution completes.
func (g *AMDGPU) setName(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.name = name
}

// Path returns the sysfs card path.
func (g *AMDGPU) Path() string { return g.path }

// Usage reads the GPU busy percentage from gpu_busy_percent.
func (g *AMDGPU) Usage(ctx context.Context) (float64, error) {
	return g.readCounter("gpu_busy_percent")
}

// MemUsage reads the memory controller busy percentage from mem_busy_percent.
func (g *AMDGPU) MemUsage(ctx context.Context) (float64, error) {
	return g.readCounter("mem_busy_percent")
}

// Temperature reads the edge temperature from the card's hwmon node.
// The sysfs value is in millidegrees Celsius.
func (g *AMDGPU) Temperature(ctx context.Context) (float64, error) {
	hwmonDir := filepath.Join(g.path, "device", "hwmon")
	entries, err := os.ReadDir(hwmonDir)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", hwmonDir, err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "hwmon") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(hwmonDir, e.Name(), "temp1_input"))
		if err != nil {
			continue
		}
		milli, err := parseCounter(raw)
		if err != nil {
			return 0, err
		}
		return milli / 1000, nil
	}
	return 0, fmt.Errorf("no hwmon temperature node under %s", hwmonDir)
}

// IsAvailable reports whether the busy-percent counter exists.
func (g *AMDGPU) IsAvailable() bool {
	_, err := os.Stat(filepath.Join(g.path, "device", "gpu_busy_percent"))
	return err == nil
}

// VendorID returns the PCI vendor ID (hex, no 0x prefix), e.g. "1002".
func (g *AMDGPU) VendorID() (string, error) {
	return g.readPCIID("vendor")
}

// DeviceID returns the PCI device ID (hex, no 0x prefix).
func (g *AMDGPU) DeviceID() (string, error) {
	return g.readPCIID("device")
}

func (g *AMDGPU) readCounter(counter string) (float64, error) {
	path := filepath.Join(g.path, "device", counter)
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := parseCounter(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func (g *AMDGPU) readPCIID(file string) (string, error) {
	path := filepath.Join(g.path, "device", file)
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	id := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	if id == "" {
		return "", fmt.Errorf("%s: %w: empty content", path, ErrMalformedReading)
	}
	return id, nil
}
