// Package device discovers GPU metric sources and reads their utilization
// counters. Each vendor backend implements the Device interface; discovery
// enumerates candidates once at startup and keeps only those that answer
// an initial usage probe. Device hot-plug is not handled.
package device

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedReading indicates a metric source produced content that
// could not be parsed as a decimal percentage.
var ErrMalformedReading = errors.New("malformed reading")

// Device is the capability interface for one GPU metric source.
type Device interface {
	// Name returns the display name. Before name resolution completes
	// (or when it fails) this is the device path.
	Name() string

	// Path returns the filesystem or synthetic path identifying the device.
	Path() string

	// Usage returns the GPU busy percentage in [0,100].
	Usage(ctx context.Context) (float64, error)

	// MemUsage returns the GPU memory busy percentage in [0,100].
	MemUsage(ctx context.Context) (float64, error)

	// Temperature returns the GPU temperature in degrees Celsius.
	Temperature(ctx context.Context) (float64, error)

	// IsAvailable reports whether the device can currently be read.
	IsAvailable() bool
}

// parseCounter converts raw counter content such as "87\n" into its
// numeric value. Counters are decimal integer strings: busy percentages,
// millidegree temperatures. Empty or non-numeric content is
// ErrMalformedReading.
func parseCounter(raw []byte) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, fmt.Errorf("%w: empty content", ErrMalformedReading)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedReading, s)
	}
	return float64(n), nil
}
