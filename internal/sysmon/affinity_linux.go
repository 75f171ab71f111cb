//go:build linux

package sysmon

import "golang.org/x/sys/unix"

// AffinityCores returns the number of CPUs in the calling thread's scheduler
// affinity mask. ok is false when the mask cannot be read.
func AffinityCores() (n int, ok bool) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, false
	}
	n = set.Count()
	return n, n > 0
}
