package apt

import (
	"bufio"
	"bytes"
	"strings"
)

// parseDpkgQuery parses dpkg-query -W output in the form
//
//	ii <tab>name<tab>version<tab>source
//
// keeping only packages in the installed state. Removed-but-not-purged
// entries (status "rc") still appear in the dpkg database and are skipped.
func parseDpkgQuery(output []byte) []Package {
	var packages []Package
	scanner := bufio.NewScanner(bytes.NewReader(output))

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}

		status := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(status, "ii") {
			continue
		}

		name := strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}
		source := strings.TrimSpace(parts[3])
		if source == "" {
			source = name
		}

		packages = append(packages, Package{
			Name: name,
			Installed: &VersionInfo{
				Version: strings.TrimSpace(parts[2]),
				Source:  stripSourceVersion(source),
			},
		})
	}

	return packages
}

// parseUpgradeSimulation parses apt-get -qq -s dist-upgrade decision lines:
//
//	Inst base-files [12.4+deb12u4] (12.4+deb12u5 Debian:12.5/stable [amd64])
//	Inst new-dep (1.0-1 Debian:12.5/stable [amd64])
//	Remv conflicting-pkg [2.0-1]
//
// Inst covers both upgrades (with the current version in brackets) and new
// installs (without). Conf lines repeat packages already listed and are
// ignored. Order follows apt's resolution order.
func parseUpgradeSimulation(output []byte) []Package {
	var changes []Package
	scanner := bufio.NewScanner(bytes.NewReader(output))

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		verb, name := fields[0], fields[1]
		if verb != "Inst" && verb != "Remv" {
			continue
		}

		pkg := Package{Name: name}
		for _, f := range fields[2:] {
			switch {
			case strings.HasPrefix(f, "[") && pkg.Installed == nil:
				pkg.Installed = &VersionInfo{Version: strings.Trim(f, "[]")}
			case strings.HasPrefix(f, "(") && verb == "Inst" && pkg.Candidate == nil:
				pkg.Candidate = &VersionInfo{Version: strings.TrimPrefix(f, "(")}
			}
		}

		changes = append(changes, pkg)
	}

	return changes
}

// parseCacheShow parses apt-cache show --no-all-versions stanzas into a map
// of package name to candidate version info. A missing Source field means
// the source package shares the binary package's name. A Source field may
// carry a version suffix ("Source: glibc (2.36-9)") which is dropped.
func parseCacheShow(output []byte) map[string]VersionInfo {
	candidates := make(map[string]VersionInfo)
	scanner := bufio.NewScanner(bytes.NewReader(output))

	var name string
	var info VersionInfo
	flush := func() {
		if name != "" {
			if info.Source == "" {
				info.Source = name
			}
			candidates[name] = info
		}
		name = ""
		info = VersionInfo{}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Package":
			name = value
		case "Version":
			info.Version = value
		case "Source":
			info.Source = stripSourceVersion(value)
		}
	}
	flush()

	return candidates
}

// stripSourceVersion drops the "(version)" suffix dpkg and apt append to
// source package references.
func stripSourceVersion(source string) string {
	if i := strings.IndexByte(source, ' '); i > 0 {
		return source[:i]
	}
	return source
}
