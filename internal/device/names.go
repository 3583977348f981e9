// PCI name resolution — a single-shot background lspci lookup per device.
// Resolution is best-effort and decoupled from usability: a device whose
// name never resolves keeps its path as its display name.
package device

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ResolveName looks up the card's marketing name via lspci in a background
// goroutine and updates the display name when the lookup succeeds. Failure
// is logged at debug and leaves the path-based name in place.
func (g *AMDGPU) ResolveName(ctx context.Context, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		name, err := g.lookupName(ctx)
		if err != nil {
			logger.Debug("GPU name resolution failed, keeping path name",
				zap.String("path", g.path),
				zap.Error(err))
			return
		}
		logger.Info("Resolved GPU name",
			zap.String("path", g.path),
			zap.String("name", name))
		g.setName(name)
	}()
}

func (g *AMDGPU) lookupName(ctx context.Context) (string, error) {
	vendor, err := g.VendorID()
	if err != nil {
		return "", err
	}
	device, err := g.DeviceID()
	if err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, "lspci", "-vmm", "-d", vendor+":"+device).Output()
	if err != nil {
		return "", fmt.Errorf("lspci: %w", err)
	}
	return parseLspciName(out)
}

// parseLspciName extracts the Device field from lspci -vmm output, which
// is a sequence of "Key:\tValue" lines.
func parseLspciName(out []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Device:") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, "Device:"))
		if name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("no Device field in lspci output")
}
