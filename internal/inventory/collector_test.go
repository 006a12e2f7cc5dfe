package inventory

import (
	"testing"

	"github.com/debtrack/agent/internal/apt"
)

// fakeCatalog is a canned apt.Catalog.
type fakeCatalog struct {
	installed []apt.Package
	changes   []apt.Package
}

func (f *fakeCatalog) Count() int                 { return len(f.installed) }
func (f *fakeCatalog) Installed() []apt.Package   { return f.installed }
func (f *fakeCatalog) Changes() []apt.Package     { return f.changes }
func (f *fakeCatalog) Lookup(name string) (apt.Package, error) {
	for _, pkg := range f.installed {
		if pkg.Name == name {
			return pkg, nil
		}
	}
	return apt.Package{}, &apt.PackageNotFoundError{Name: name}
}

func testCatalog() *fakeCatalog {
	vi := func(version, source string) *apt.VersionInfo {
		return &apt.VersionInfo{Version: version, Source: source}
	}
	return &fakeCatalog{
		installed: []apt.Package{
			{Name: "package1", Installed: vi("1.0.0-1", "package1")},
			// Two binaries built from the same source package.
			{Name: "package21", Installed: vi("2.0.0-1", "package2")},
			{Name: "package22", Installed: vi("2.0.0-1", "package2")},
			{Name: "package3", Installed: vi("3.0.0-1", "package31")},
		},
		changes: []apt.Package{
			// Upgrade whose candidate moved to a renamed source package.
			{
				Name:      "package3",
				Installed: vi("3.0.0-1", "package31"),
				Candidate: vi("3.0.0-2", "package32"),
			},
			// Pulled in as a new dependency of the dist-upgrade, not
			// currently installed, so not an upgrade of anything here.
			{
				Name:      "package9",
				Candidate: vi("9.0.0-1", "package9"),
			},
		},
	}
}

func TestCollectFull(t *testing.T) {
	snap := Collect(testCatalog(), false, nil)

	wantInstalled := []PackageRecord{
		{Name: "package1", Version: "1.0.0-1", Source: "package1"},
		{Name: "package21", Version: "2.0.0-1", Source: "package2"},
		{Name: "package22", Version: "2.0.0-1", Source: "package2"},
		{Name: "package3", Version: "3.0.0-1", Source: "package31"},
	}
	if len(snap.Installed) != len(wantInstalled) {
		t.Fatalf("Installed has %d records, want %d", len(snap.Installed), len(wantInstalled))
	}
	for i, want := range wantInstalled {
		if snap.Installed[i] != want {
			t.Errorf("Installed[%d] = %+v, want %+v", i, snap.Installed[i], want)
		}
	}

	wantUpgradable := []UpgradeRecord{
		{Name: "package3", Source: "package32", VersionFrom: "3.0.0-1", VersionTo: "3.0.0-2"},
	}
	if len(snap.Upgradable) != 1 || snap.Upgradable[0] != wantUpgradable[0] {
		t.Fatalf("Upgradable = %+v, want %+v", snap.Upgradable, wantUpgradable)
	}

	if len(snap.Uninstalled) != 0 {
		t.Fatalf("catalog scans never observe removals, got %+v", snap.Uninstalled)
	}
}

func TestCollectUpgradableOnly(t *testing.T) {
	snap := Collect(testCatalog(), true, nil)

	if len(snap.Installed) != 0 {
		t.Fatalf("upgradable-only collection must skip the installed walk, got %d records", len(snap.Installed))
	}
	if len(snap.Upgradable) != 1 {
		t.Fatalf("Upgradable has %d records, want 1", len(snap.Upgradable))
	}
	want := UpgradeRecord{Name: "package3", Source: "package32", VersionFrom: "3.0.0-1", VersionTo: "3.0.0-2"}
	if snap.Upgradable[0] != want {
		t.Fatalf("Upgradable[0] = %+v, want %+v", snap.Upgradable[0], want)
	}
}

func TestCollectNotInstalledChangeExcluded(t *testing.T) {
	snap := Collect(testCatalog(), false, nil)
	for _, rec := range snap.Upgradable {
		if rec.Name == "package9" {
			t.Fatal("package9 is not installed and must not appear among upgrades")
		}
	}
}

func TestCollectEmptyCatalog(t *testing.T) {
	snap := Collect(&fakeCatalog{}, false, nil)
	if !snap.Empty() {
		t.Fatalf("empty catalog should produce an empty snapshot, got %+v", snap)
	}
}
