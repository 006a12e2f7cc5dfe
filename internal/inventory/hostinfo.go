package inventory

import (
	"net"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// lookupCNAME resolves a hostname to its canonical DNS name, overridable in
// tests.
var lookupCNAME = net.LookupCNAME

// CollectHost gathers the host facts for the report header: hostname, the
// distribution name and the running kernel.
func CollectHost() (HostInfo, error) {
	info, err := host.Info()
	if err != nil {
		return HostInfo{}, err
	}

	kernel, err := kernelInfo()
	if err != nil {
		// The kernel release from gopsutil is still usable.
		kernel = Kernel{Release: info.KernelVersion}
	}

	return HostInfo{
		Hostname: fqdn(info.Hostname),
		OS:       titleCase(info.Platform),
		Kernel:   kernel,
	}, nil
}

// fqdn expands the short hostname to its fully qualified name, which is the
// identity the server keys hosts by. Falls back to the short name when
// resolution fails or answers nothing usable.
func fqdn(hostname string) string {
	cname, err := lookupCNAME(hostname)
	if err != nil {
		return hostname
	}
	cname = strings.TrimSuffix(cname, ".")
	if cname == "" {
		return hostname
	}
	return cname
}

// titleCase upper-cases the first letter of the distribution id, so
// "debian" reports as "Debian" like the server expects.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
