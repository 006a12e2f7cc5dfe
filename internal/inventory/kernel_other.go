//go:build !linux

package inventory

import "github.com/shirou/gopsutil/v3/host"

func kernelInfo() (Kernel, error) {
	release, err := host.KernelVersion()
	if err != nil {
		return Kernel{}, err
	}
	return Kernel{Release: release}, nil
}
