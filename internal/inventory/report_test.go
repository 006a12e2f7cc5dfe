package inventory

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSnapshotTotalAndEmpty(t *testing.T) {
	var snap Snapshot
	if !snap.Empty() || snap.Total() != 0 {
		t.Fatal("zero-value snapshot should be empty")
	}

	snap.Installed = append(snap.Installed, PackageRecord{Name: "a"})
	snap.Upgradable = append(snap.Upgradable, UpgradeRecord{Name: "b"})
	snap.Uninstalled = append(snap.Uninstalled, PackageRecord{Name: "c"})
	if snap.Empty() {
		t.Fatal("snapshot with records should not be empty")
	}
	if snap.Total() != 3 {
		t.Fatalf("Total = %d, want 3", snap.Total())
	}
}

func TestBuildReportEmptyListsMarshalAsArrays(t *testing.T) {
	report := BuildReport(Snapshot{}, UpdateFull, HostInfo{Hostname: "host.example.com"}, "v1")

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	payload := string(data)
	if strings.Contains(payload, "null") {
		t.Fatalf("empty package lists must marshal as [], got %s", payload)
	}
	for _, key := range []string{`"installed":[]`, `"uninstalled":[]`, `"upgradable":[]`} {
		if !strings.Contains(payload, key) {
			t.Errorf("payload missing %s: %s", key, payload)
		}
	}
}

func TestBuildReportPayloadKeys(t *testing.T) {
	snap := Snapshot{
		Installed:   []PackageRecord{{Name: "pkg", Version: "1.0-1", Source: "pkg-src"}},
		Upgradable:  []UpgradeRecord{{Name: "pkg2", Source: "pkg2", VersionFrom: "1.0-1", VersionTo: "1.0-2"}},
		Uninstalled: []PackageRecord{{Name: "pkg3", Version: "2.0-1", Source: "pkg3"}},
	}
	host := HostInfo{
		Hostname: "host.example.com",
		OS:       "Debian",
		Kernel:   Kernel{Release: "6.1.0-18-amd64", Version: "#1 SMP Debian 6.1.76-1"},
	}

	data, err := json.Marshal(BuildReport(snap, UpdatePartial, host, "v1"))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded["api_version"] != "v1" {
		t.Errorf("api_version = %v, want v1", decoded["api_version"])
	}
	if decoded["os"] != "Debian" {
		t.Errorf("os = %v, want Debian", decoded["os"])
	}
	if decoded["hostname"] != "host.example.com" {
		t.Errorf("hostname = %v, want host.example.com", decoded["hostname"])
	}
	if decoded["update_type"] != "partial" {
		t.Errorf("update_type = %v, want partial", decoded["update_type"])
	}

	kernel, ok := decoded["running_kernel"].(map[string]any)
	if !ok {
		t.Fatalf("running_kernel has wrong shape: %v", decoded["running_kernel"])
	}
	if kernel["release"] != "6.1.0-18-amd64" {
		t.Errorf("running_kernel.release = %v", kernel["release"])
	}

	upgradable, ok := decoded["upgradable"].([]any)
	if !ok || len(upgradable) != 1 {
		t.Fatalf("upgradable has wrong shape: %v", decoded["upgradable"])
	}
	upgrade := upgradable[0].(map[string]any)
	if upgrade["version_from"] != "1.0-1" || upgrade["version_to"] != "1.0-2" {
		t.Errorf("upgrade record = %v, want version_from/version_to keys", upgrade)
	}
}

func TestBuildReportKeepsSnapshotOrder(t *testing.T) {
	snap := Snapshot{
		Installed: []PackageRecord{
			{Name: "zzz", Version: "1", Source: "zzz"},
			{Name: "aaa", Version: "1", Source: "aaa"},
		},
	}
	report := BuildReport(snap, UpdateFull, HostInfo{}, "v1")
	if report.Installed[0].Name != "zzz" || report.Installed[1].Name != "aaa" {
		t.Fatalf("acquisition order must be preserved, got %+v", report.Installed)
	}
}
