//go:build linux

package apt

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

const dpkgLockPath = "/var/lib/dpkg/lock-frontend"

// probeDpkgLock checks whether another package operation currently holds the
// dpkg frontend lock, so the failure surfaces as CatalogUnavailable before
// any traversal instead of as a confusing tool error mid-scan. The probe is
// best effort: when the lock file cannot even be opened (non-root, chroot
// without dpkg) the tools themselves will report the real problem.
func probeDpkgLock() error {
	f, err := os.OpenFile(dpkgLockPath, os.O_RDWR, 0)
	if err != nil {
		return nil
	}
	defer f.Close()

	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return &CatalogUnavailableError{Reason: "dpkg lock held by another process"}
	}
	return nil
}
