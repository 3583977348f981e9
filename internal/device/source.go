package device

import (
	"context"
	"path/filepath"

	"github.com/gpumon-app/agent/internal/sampler"
)

// metricSource adapts one Device counter into a sampler.Source. A device
// contributes two series: busy percentage and memory busy percentage.
type metricSource struct {
	dev    Device
	series string
	read   func(ctx context.Context) (float64, error)
}

func (s *metricSource) Name() string { return s.series }

func (s *metricSource) IsAvailable() bool { return s.dev.IsAvailable() }

func (s *metricSource) Read(ctx context.Context) (float64, error) { return s.read(ctx) }

// UsageSource exposes the device's GPU busy percentage as a series named
// "<card>.busy".
func UsageSource(dev Device) sampler.Source {
	return &metricSource{
		dev:    dev,
		series: seriesID(dev) + ".busy",
		read:   dev.Usage,
	}
}

// MemUsageSource exposes the device's memory busy percentage as a series
// named "<card>.mem".
func MemUsageSource(dev Device) sampler.Source {
	return &metricSource{
		dev:    dev,
		series: seriesID(dev) + ".mem",
		read:   dev.MemUsage,
	}
}

func seriesID(dev Device) string {
	return filepath.Base(dev.Path())
}
