// NVIDIA GPU backend — polls nvidia-smi, since the driver exposes no
// sysfs busy-percent counters. Each read invokes one query in
// csv,noheader,nounits format, which prints a bare decimal integer.
package device

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// NVIDIAGPU reads utilization for one GPU index via nvidia-smi.
type NVIDIAGPU struct {
	index int
	name  string
}

// Name returns the marketing name reported by nvidia-smi at discovery.
func (g *NVIDIAGPU) Name() string { return g.name }

// Path returns a synthetic identifier for the GPU index.
func (g *NVIDIAGPU) Path() string { return fmt.Sprintf("nvidia%d", g.index) }

// Usage returns the GPU busy percentage.
func (g *NVIDIAGPU) Usage(ctx context.Context) (float64, error) {
	return g.query(ctx, "utilization.gpu")
}

// MemUsage returns the memory controller busy percentage.
func (g *NVIDIAGPU) MemUsage(ctx context.Context) (float64, error) {
	return g.query(ctx, "utilization.memory")
}

// Temperature returns the GPU temperature in degrees Celsius.
func (g *NVIDIAGPU) Temperature(ctx context.Context) (float64, error) {
	return g.query(ctx, "temperature.gpu")
}

// IsAvailable reports whether nvidia-smi is on PATH.
func (g *NVIDIAGPU) IsAvailable() bool {
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}

func (g *NVIDIAGPU) query(ctx context.Context, field string) (float64, error) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"-i", strconv.Itoa(g.index),
		"--query-gpu="+field,
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi %s: %w", field, err)
	}
	return parseCounter(out)
}

// DiscoverNVIDIA lists GPUs via one nvidia-smi invocation. Returns nil
// when nvidia-smi is missing or fails; a host without the NVIDIA stack is
// the normal case, not an error.
func DiscoverNVIDIA(ctx context.Context, logger *zap.Logger) []*NVIDIAGPU {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		logger.Debug("nvidia-smi not on PATH, skipping NVIDIA discovery")
		return nil
	}

	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=index,name",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		logger.Warn("NVIDIA enumeration failed", zap.Error(err))
		return nil
	}

	var devices []*NVIDIAGPU
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		g, err := parseNVIDIAListLine(line)
		if err != nil {
			logger.Warn("Unexpected nvidia-smi output line",
				zap.String("line", line),
				zap.Error(err))
			continue
		}
		logger.Info("Discovered GPU",
			zap.String("path", g.Path()),
			zap.String("name", g.name))
		devices = append(devices, g)
	}
	return devices
}

// parseNVIDIAListLine parses one "index, name" line of the discovery query.
func parseNVIDIAListLine(line string) (*NVIDIAGPU, error) {
	fields := strings.SplitN(strings.TrimSpace(line), ", ", 2)
	if len(fields) < 2 {
		return nil, fmt.Errorf("want \"index, name\", got %q", line)
	}
	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid GPU index %q", fields[0])
	}
	return &NVIDIAGPU{index: index, name: strings.TrimSpace(fields[1])}, nil
}
