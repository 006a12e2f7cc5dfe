//go:build linux

package inventory

import "golang.org/x/sys/unix"

// kernelInfo reads the kernel release and full version string via uname,
// matching what `uname -r` and `uname -v` report.
func kernelInfo() (Kernel, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return Kernel{}, err
	}
	return Kernel{
		Release: unix.ByteSliceToString(uts.Release[:]),
		Version: unix.ByteSliceToString(uts.Version[:]),
	}, nil
}
