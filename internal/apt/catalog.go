package apt

import (
	"os/exec"

	"github.com/debtrack/agent/internal/logging"
)

var log = logging.L("apt")

// SystemCatalog is the Catalog implementation backed by the host's dpkg
// database and apt index, queried through the dpkg-query/apt-get/apt-cache
// tools. It is a point-in-time materialization: opened once per invocation
// and not safe for concurrent use.
type SystemCatalog struct {
	installed     []Package
	changes       []Package
	byName        map[string]Package
	installedOnly bool

	// exec seams, overridable in tests
	queryInstalled func() ([]byte, error)
	simulate       func() ([]byte, error)
	showCandidates func(names ...string) ([]byte, error)
}

func newSystemCatalog() *SystemCatalog {
	return &SystemCatalog{
		queryInstalled: execDpkgQuery,
		simulate:       execDistUpgradeSimulation,
		showCandidates: execCacheShow,
	}
}

// Open materializes the full catalog for a scan: the installed set, a
// simulated full dist-upgrade (never applied), and candidate metadata for
// every package the simulation would touch. Later Lookup calls are
// restricted to packages the materialized catalog already knows.
//
// Any failure to read the index, including a held dpkg lock, returns a
// *CatalogUnavailableError.
func Open() (*SystemCatalog, error) {
	c := newSystemCatalog()
	c.installedOnly = true
	if err := c.open(); err != nil {
		return nil, err
	}
	if err := c.materializeChanges(); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenIndex materializes only the installed set, for callers that need
// per-name lookups but no upgrade computation (the dpkg hook path). Lookup
// falls back to the apt index for names seen for the first time, since a
// hook line may name a package that is not installed yet.
func OpenIndex() (*SystemCatalog, error) {
	c := newSystemCatalog()
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SystemCatalog) open() error {
	if err := probeDpkgLock(); err != nil {
		return err
	}

	out, err := c.queryInstalled()
	if err != nil {
		return &CatalogUnavailableError{Reason: "dpkg-query failed", Err: err}
	}
	c.installed = parseDpkgQuery(out)
	log.Info("found installed binary packages", "count", len(c.installed))

	c.byName = make(map[string]Package, len(c.installed))
	for _, p := range c.installed {
		c.byName[p.Name] = p
	}
	return nil
}

// materializeChanges runs the dist-upgrade simulation, backfills installed
// metadata onto the changes, and resolves their candidate source names.
func (c *SystemCatalog) materializeChanges() error {
	simOut, err := c.simulate()
	if err != nil {
		return &CatalogUnavailableError{Reason: "upgrade simulation failed", Err: err}
	}
	c.changes = parseUpgradeSimulation(simOut)
	log.Info("found packages changed by upgrade simulation", "count", len(c.changes))

	for i := range c.changes {
		ch := &c.changes[i]
		if existing, ok := c.byName[ch.Name]; ok {
			ch.Installed = existing.Installed
		}
		c.byName[ch.Name] = *ch
	}
	return c.resolveCandidates()
}

// resolveCandidates fills in the candidate source names for all changed
// packages with a single batched apt-cache call. The simulation output names
// the candidate version but not the source package it comes from.
func (c *SystemCatalog) resolveCandidates() error {
	var names []string
	for _, ch := range c.changes {
		if ch.Candidate != nil {
			names = append(names, ch.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	out, err := c.showCandidates(names...)
	if err != nil {
		return &CatalogUnavailableError{Reason: "candidate metadata lookup failed", Err: err}
	}
	candidates := parseCacheShow(out)

	for i := range c.changes {
		ch := &c.changes[i]
		if ch.Candidate == nil {
			continue
		}
		if info, ok := candidates[ch.Name]; ok {
			ch.Candidate.Source = info.Source
			if ch.Candidate.Version == "" {
				ch.Candidate.Version = info.Version
			}
		}
		c.byName[ch.Name] = *ch
	}
	return nil
}

// Count returns the number of installed packages.
func (c *SystemCatalog) Count() int { return len(c.installed) }

// Installed returns the installed packages in dpkg traversal order.
func (c *SystemCatalog) Installed() []Package { return c.installed }

// Changes returns the packages the dist-upgrade simulation would touch.
// Empty for catalogs opened with OpenIndex.
func (c *SystemCatalog) Changes() []Package { return c.changes }

// Lookup returns the metadata for one package by name.
func (c *SystemCatalog) Lookup(name string) (Package, error) {
	pkg, known := c.byName[name]
	if known && pkg.Candidate != nil {
		return pkg, nil
	}
	if c.installedOnly {
		if !known {
			return Package{}, &PackageNotFoundError{Name: name}
		}
		return pkg, nil
	}

	// Not yet materialized (or candidate unknown): ask the apt index.
	if out, err := c.showCandidates(name); err == nil {
		if info, ok := parseCacheShow(out)[name]; ok {
			info := info
			merged := Package{Name: name, Candidate: &info}
			if known {
				merged.Installed = pkg.Installed
			}
			c.byName[name] = merged
			return merged, nil
		}
	}
	if known {
		return pkg, nil
	}
	return Package{}, &PackageNotFoundError{Name: name}
}

func execDpkgQuery() ([]byte, error) {
	cmd := exec.Command("dpkg-query", "-W",
		"-f=${db:Status-Abbrev}\t${Package}\t${Version}\t${source:Package}\n")
	return cmd.Output()
}

func execDistUpgradeSimulation() ([]byte, error) {
	// -qq keeps only the Inst/Conf/Remv decision lines; the simulation never
	// touches package state.
	cmd := exec.Command("apt-get", "-qq", "-s", "dist-upgrade")
	cmd.Env = append(cmd.Environ(), "LC_ALL=C")
	return cmd.Output()
}

func execCacheShow(names ...string) ([]byte, error) {
	args := append([]string{"show", "--no-all-versions"}, names...)
	cmd := exec.Command("apt-cache", args...)
	cmd.Env = append(cmd.Environ(), "LC_ALL=C")
	return cmd.Output()
}
