// Package inventory builds the normalized package-state snapshot and the
// report payload delivered to the DebTrack server. Both acquisition paths
// (full catalog scan and dpkg hook stream) converge on the same Snapshot
// shape.
package inventory

// PackageRecord is one installed or uninstalled binary package. Source is
// the source package the binary was built from and may differ from Name.
type PackageRecord struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

// UpgradeRecord is one pending upgrade. Source is the source package name of
// the candidate version: a source rename across an upgrade is reported with
// the new name, intentionally.
type UpgradeRecord struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	VersionFrom string `json:"version_from"`
	VersionTo   string `json:"version_to"`
}

// Snapshot is the normalized package-state delta of one agent invocation.
// List order is acquisition order (catalog traversal or hook line order) and
// duplicates from multi-binary source packages are kept as-is. Snapshots are
// never persisted.
type Snapshot struct {
	Installed   []PackageRecord
	Upgradable  []UpgradeRecord
	Uninstalled []PackageRecord
}

// Total returns the combined record count across all three groups.
func (s Snapshot) Total() int {
	return len(s.Installed) + len(s.Upgradable) + len(s.Uninstalled)
}

// Empty reports whether there is nothing to report.
func (s Snapshot) Empty() bool { return s.Total() == 0 }

// UpdateType classifies a report for the server.
type UpdateType string

const (
	// UpdateFull marks a report backed by a complete installed-package walk.
	UpdateFull UpdateType = "full"
	// UpdatePartial marks upgradable-only and hook-derived reports.
	UpdatePartial UpdateType = "partial"
)
