// Package apt exposes the local apt/dpkg package index through a narrow
// capability interface so the inventory engine can be tested against a fake.
package apt

import "fmt"

// VersionInfo is one concrete version of a binary package together with the
// source package it was built from. The version string is opaque to this
// agent; only apt compares versions.
type VersionInfo struct {
	Version string
	Source  string
}

// Package is one binary package as currently known to the index. Installed
// is nil when the package is not installed, Candidate is nil when apt has no
// installable version for it.
type Package struct {
	Name      string
	Installed *VersionInfo
	Candidate *VersionInfo
}

// IsInstalled reports whether the package is currently installed.
func (p Package) IsInstalled() bool {
	return p.Installed != nil
}

// Catalog is the capability the inventory engine needs from the package
// index: the installed set, the result of a simulated full dist-upgrade, and
// per-name metadata lookup.
type Catalog interface {
	// Count returns the number of installed packages.
	Count() int
	// Installed returns the installed packages in index traversal order.
	Installed() []Package
	// Changes returns the packages whose state would change under a full
	// dist-upgrade (with removals allowed), without applying it. Entries
	// carry both the installed and the candidate version where present.
	Changes() []Package
	// Lookup returns the current metadata for one package by name. A
	// missing name is a *PackageNotFoundError.
	Lookup(name string) (Package, error)
}

// CatalogUnavailableError indicates the package index could not be opened,
// for example because the dpkg lock is held or the apt tooling is missing.
// No report is produced in that case.
type CatalogUnavailableError struct {
	Reason string
	Err    error
}

func (e *CatalogUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("package index unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("package index unavailable: %s", e.Reason)
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

// PackageNotFoundError indicates a lookup for a name the index does not
// know. During hook parsing this means the hook stream and the index are out
// of sync, which must surface rather than be dropped.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q not found in index", e.Name)
}
