package inventory

// Kernel identifies the running kernel of the reporting host.
type Kernel struct {
	Release string `json:"release"`
	Version string `json:"version"`
}

// HostInfo carries the host facts attached to every report.
type HostInfo struct {
	Hostname string
	OS       string
	Kernel   Kernel
}

// Report is the payload delivered verbatim to the DebTrack server. The
// three package lists always marshal as arrays, never null.
type Report struct {
	APIVersion    string          `json:"api_version"`
	OS            string          `json:"os"`
	Hostname      string          `json:"hostname"`
	RunningKernel Kernel          `json:"running_kernel"`
	Installed     []PackageRecord `json:"installed"`
	Uninstalled   []PackageRecord `json:"uninstalled"`
	Upgradable    []UpgradeRecord `json:"upgradable"`
	UpdateType    UpdateType      `json:"update_type"`
}

// BuildReport merges a snapshot with host facts into the final payload.
// The update type is the caller's to choose: UpdateFull only when a complete
// installed-package walk backed the snapshot.
func BuildReport(snap Snapshot, updateType UpdateType, host HostInfo, apiVersion string) *Report {
	report := &Report{
		APIVersion:    apiVersion,
		OS:            host.OS,
		Hostname:      host.Hostname,
		RunningKernel: host.Kernel,
		Installed:     snap.Installed,
		Uninstalled:   snap.Uninstalled,
		Upgradable:    snap.Upgradable,
		UpdateType:    updateType,
	}
	if report.Installed == nil {
		report.Installed = []PackageRecord{}
	}
	if report.Uninstalled == nil {
		report.Uninstalled = []PackageRecord{}
	}
	if report.Upgradable == nil {
		report.Upgradable = []UpgradeRecord{}
	}
	return report
}
