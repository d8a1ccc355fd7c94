// Package gpu detects NVIDIA hardware through nvidia-smi. Machines without
// the tool or without a GPU are normal, not an error condition.
package gpu

import (
	"context"
	"strings"

	"github.com/vaila-multimodaltoolbox/vaila/shell"
)

// Device is one GPU as reported by nvidia-smi.
type Device struct {
	Name   string
	Driver string
}

// Detect queries nvidia-smi for installed GPUs. A missing tool or a
// nonzero exit yields (nil, nil): the host simply has no usable NVIDIA
// hardware.
func Detect(ctx context.Context, runner shell.Runner) ([]Device, error) {
	name := "nvidia-smi"
	if lp, ok := runner.(shell.LookPather); ok {
		path, err := lp.LookPath(name)
		if err != nil {
			return nil, nil
		}
		name = path
	}
	result, err := runner.Run(ctx, shell.Command{
		Name: name,
		Args: []string{"--query-gpu=name,driver_version", "--format=csv,noheader"},
	})
	if err != nil || result.ExitCode != 0 {
		return nil, nil
	}
	return parseDevices(result.Stdout), nil
}

// parseDevices reads nvidia-smi's csv,noheader output, one device per line.
func parseDevices(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, ",", 2)
		device := Device{Name: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			device.Driver = strings.TrimSpace(fields[1])
		}
		devices = append(devices, device)
	}
	return devices
}
