package inventory

import (
	"log/slog"

	"github.com/debtrack/agent/internal/apt"
)

// Collect walks an opened catalog and builds the snapshot of installed and
// upgradable packages. With upgradableOnly set, the full installed walk is
// skipped and only pending upgrades are collected.
//
// The upgrade-simulation walk excludes packages that are not currently
// installed: a dist-upgrade may pull in brand-new dependencies, and those
// are not upgrades of anything on this host. Removals are never observable
// from the catalog, only from the dpkg hook, so Uninstalled stays empty on
// this path.
func Collect(catalog apt.Catalog, upgradableOnly bool, logger *slog.Logger) Snapshot {
	if logger == nil {
		logger = slog.Default()
	}

	var snap Snapshot

	if !upgradableOnly {
		for _, pkg := range catalog.Installed() {
			record := PackageRecord{
				Name:    pkg.Name,
				Version: pkg.Installed.Version,
				Source:  pkg.Installed.Source,
			}
			snap.Installed = append(snap.Installed, record)
			logger.Debug("collected installed package", "package", record.Name, "version", record.Version)
		}
	}

	for _, pkg := range catalog.Changes() {
		if !pkg.IsInstalled() || pkg.Candidate == nil {
			continue
		}
		record := UpgradeRecord{
			Name:        pkg.Name,
			Source:      pkg.Candidate.Source,
			VersionFrom: pkg.Installed.Version,
			VersionTo:   pkg.Candidate.Version,
		}
		snap.Upgradable = append(snap.Upgradable, record)
		logger.Debug("collected upgrade", "package", record.Name, "from", record.VersionFrom, "to", record.VersionTo)
	}

	logger.Info("snapshot collected",
		"installed", len(snap.Installed),
		"upgradable", len(snap.Upgradable),
	)
	return snap
}
