package hook

import "fmt"

// Directions a change line can carry. `<` installs or upgrades (also fresh
// installs, where the from-version is "-"), `>` downgrades or removes (the
// to-version is "-"), `=` is a reinstall at the same version.
const (
	directionUpgrade   = "<"
	directionDowngrade = ">"
	directionNone      = "="
)

// actionConfigure marks the second firing of the hook for a change already
// reported with its unpack line. Such lines are skipped so a change is never
// recorded twice.
const actionConfigure = "**CONFIGURE**"

// versionNone is the placeholder apt uses for "no version on this side":
// the from-version of a fresh install, the to-version of a removal.
const versionNone = "-"

// Line is one parsed change line. The two protocol versions carry different
// field sets, so they are distinct types rather than one struct with
// optional fields.
type Line interface {
	isLine()
}

// LineV2 is a protocol version 2 change line:
//
//	name version_from direction version_to action
type LineV2 struct {
	Name        string
	VersionFrom string
	Direction   string
	VersionTo   string
	Action      string
}

func (LineV2) isLine() {}

// LineV3 is a protocol version 3 change line, which adds architecture and
// multi-arch qualifiers on both sides:
//
//	name version_from arch_from multiarch_from direction version_to arch_to multiarch_to action
type LineV3 struct {
	Name          string
	VersionFrom   string
	ArchFrom      string
	MultiarchFrom string
	Direction     string
	VersionTo     string
	ArchTo        string
	MultiarchTo   string
	Action        string
}

func (LineV3) isLine() {}

// MalformedLineError indicates a change line with fewer fields than its
// protocol version requires.
type MalformedLineError struct {
	Line string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed hook change line: %q", e.Line)
}
