package device

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

// DefaultBasePath is where the DRM subsystem exposes card nodes on Linux.
const DefaultBasePath = "/sys/class/drm"

// cardPattern matches primary card nodes. Render nodes (renderD128 etc.)
// carry no busy-percent counters and are excluded.
var cardPattern = regexp.MustCompile(`^card[0-9]+$`)

// Discover enumerates basePath once and returns a descriptor per cardN
// entry whose initial usage probe succeeds. Entries that fail the probe
// are logged and excluded. The list is never refreshed.
func Discover(ctx context.Context, basePath string, logger *zap.Logger) []*AMDGPU {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(basePath)
	if err != nil {
		logger.Warn("GPU enumeration failed",
			zap.String("path", basePath),
			zap.Error(err))
		return nil
	}

	var devices []*AMDGPU
	for _, e := range entries {
		if !cardPattern.MatchString(e.Name()) {
			continue
		}
		g := NewAMDGPU(filepath.Join(basePath, e.Name()))
		if _, err := g.Usage(ctx); err != nil {
			logger.Debug("Skipping card, usage probe failed",
				zap.String("path", g.Path()),
				zap.Error(err))
			continue
		}
		logger.Info("Discovered GPU", zap.String("path", g.Path()))
		devices = append(devices, g)
	}
	return devices
}
