package api

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/gpumon-app/agent/internal/models"
)

// statusInfo assembles the host status payload. Every field is
// best-effort; a host info failure still yields a usable response.
func statusInfo(ctx context.Context, version string) models.StatusInfo {
	info := models.StatusInfo{Version: version}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}
	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.OS = hi.OS
		info.Platform = hi.Platform
		info.UptimeSeconds = int(hi.Uptime)
	}
	return info
}
