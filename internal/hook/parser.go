// Package hook parses the line-oriented stream dpkg emits to its
// Pre-Install-Pkgs hook (protocol versions 2 and 3) into the same
// normalized snapshot shape the full catalog scan produces, without a full
// cache walk.
package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/debtrack/agent/internal/apt"
	"github.com/debtrack/agent/internal/inventory"
)

var (
	// ErrMalformedPreamble is returned when the first line is not a
	// "VERSION <n>" declaration.
	ErrMalformedPreamble = errors.New("expected VERSION line to be the first one")

	// ErrMissingSeparator is returned when the preamble is never terminated
	// by an empty line.
	ErrMissingSeparator = errors.New("no empty line separator found in hook input")
)

// UnsupportedProtocolVersionError is returned for a well-formed VERSION
// declaration outside the supported set {2, 3}.
type UnsupportedProtocolVersionError struct {
	Version int
}

func (e *UnsupportedProtocolVersionError) Error() string {
	return fmt.Sprintf("unsupported hook protocol version %d", e.Version)
}

// Resolver is the slice of the package index the parser needs: hook lines
// never carry source-package names, so every recorded change requires one
// lookup by binary package name.
type Resolver interface {
	Lookup(name string) (apt.Package, error)
}

// Parse consumes the hook lines of one dpkg invocation and builds the
// package-state snapshot. Lines are processed in order and never retained.
//
// A valid preamble followed by an empty change list yields an empty
// snapshot, which is a normal outcome: the hook also fires when nothing
// changes. Malformed input and lookup misses abort the whole parse; a
// change line naming a package the index does not know means catalog and
// hook are out of sync and must not be silently dropped.
func Parse(lines []string, index Resolver, logger *slog.Logger) (inventory.Snapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var snap inventory.Snapshot

	version, rest, err := parsePreamble(lines)
	if err != nil {
		return snap, err
	}
	if len(rest) == 0 {
		return snap, nil
	}

	for _, raw := range rest {
		raw = strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line, err := parseLine(version, raw)
		if err != nil {
			return inventory.Snapshot{}, err
		}
		if err := classify(&snap, line, index, logger); err != nil {
			return inventory.Snapshot{}, err
		}
	}

	logger.Info("parsed dpkg hook stream",
		"protocol", version,
		"installed", len(snap.Installed),
		"uninstalled", len(snap.Uninstalled),
	)
	return snap, nil
}

// parsePreamble validates the VERSION declaration, skips the configuration
// key=value lines, and returns the protocol version along with the change
// lines following the empty-line separator.
func parsePreamble(lines []string) (int, []string, error) {
	if len(lines) == 0 {
		return 0, nil, ErrMalformedPreamble
	}

	first := strings.TrimSpace(lines[0])
	value, ok := strings.CutPrefix(first, "VERSION ")
	if !ok {
		return 0, nil, fmt.Errorf("%w, got: %q", ErrMalformedPreamble, first)
	}
	version, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, nil, fmt.Errorf("%w, got: %q", ErrMalformedPreamble, first)
	}
	if version != 2 && version != 3 {
		return 0, nil, &UnsupportedProtocolVersionError{Version: version}
	}

	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			return version, lines[i+2:], nil
		}
	}
	return 0, nil, ErrMissingSeparator
}

// parseLine tokenizes one change line according to the protocol version.
// The action field is the tail of the line and may contain spaces (it is
// often a filesystem path), so the split is bounded at the field count.
func parseLine(version int, raw string) (Line, error) {
	switch version {
	case 2:
		fields := strings.SplitN(raw, " ", 5)
		if len(fields) < 5 {
			return nil, &MalformedLineError{Line: raw}
		}
		return LineV2{
			Name:        fields[0],
			VersionFrom: fields[1],
			Direction:   fields[2],
			VersionTo:   fields[3],
			Action:      fields[4],
		}, nil
	case 3:
		fields := strings.SplitN(raw, " ", 9)
		if len(fields) < 9 {
			return nil, &MalformedLineError{Line: raw}
		}
		return LineV3{
			Name:          fields[0],
			VersionFrom:   fields[1],
			ArchFrom:      fields[2],
			MultiarchFrom: fields[3],
			Direction:     fields[4],
			VersionTo:     fields[5],
			ArchTo:        fields[6],
			MultiarchTo:   fields[7],
			Action:        fields[8],
		}, nil
	default:
		return nil, &UnsupportedProtocolVersionError{Version: version}
	}
}

// classify appends the record a change line produces, if any, to the
// snapshot. **CONFIGURE** duplicates are skipped outright; reinstalls
// (direction "=") produce no record but still resolve against the index, so
// a reinstall of a package the index does not know surfaces as a desync.
func classify(snap *inventory.Snapshot, line Line, index Resolver, logger *slog.Logger) error {
	var name, versionFrom, direction, versionTo, action string
	switch l := line.(type) {
	case LineV2:
		name, versionFrom, direction, versionTo, action = l.Name, l.VersionFrom, l.Direction, l.VersionTo, l.Action
	case LineV3:
		name, versionFrom, direction, versionTo, action = l.Name, l.VersionFrom, l.Direction, l.VersionTo, l.Action
	default:
		return fmt.Errorf("unknown hook line type %T", line)
	}

	if action == actionConfigure {
		return nil
	}

	pkg, err := index.Lookup(name)
	if err != nil {
		return err
	}

	if direction == directionNone {
		return nil
	}

	switch direction {
	case directionUpgrade:
		// Install or upgrade: both collapse to an installed record at the
		// candidate version, with the candidate's source name.
		source, err := candidateSource(pkg)
		if err != nil {
			return err
		}
		snap.Installed = append(snap.Installed, inventory.PackageRecord{
			Name:    name,
			Version: versionTo,
			Source:  source,
		})
		if versionFrom == versionNone {
			logger.Debug("collected installed package", "package", name, "version", versionTo)
		} else {
			logger.Debug("collected upgraded package", "package", name, "version", versionTo)
		}

	case directionDowngrade:
		if versionTo == versionNone {
			// Removal: recorded with the version and source it had while
			// installed.
			if pkg.Installed == nil {
				return fmt.Errorf("package %q reported removed but has no installed version in index", name)
			}
			snap.Uninstalled = append(snap.Uninstalled, inventory.PackageRecord{
				Name:    name,
				Version: versionFrom,
				Source:  pkg.Installed.Source,
			})
			logger.Debug("collected removed package", "package", name, "version", versionFrom)
			return nil
		}
		// Downgrade: same shape as an install, at the candidate version.
		source, err := candidateSource(pkg)
		if err != nil {
			return err
		}
		snap.Installed = append(snap.Installed, inventory.PackageRecord{
			Name:    name,
			Version: versionTo,
			Source:  source,
		})
		logger.Debug("collected downgraded package", "package", name, "version", versionTo)
	}

	return nil
}

func candidateSource(pkg apt.Package) (string, error) {
	if pkg.Candidate == nil {
		return "", fmt.Errorf("package %q has no candidate version in index", pkg.Name)
	}
	return pkg.Candidate.Source, nil
}
