//go:build !linux

package sysmon

// AffinityCores is not supported outside Linux.
func AffinityCores() (n int, ok bool) {
	return 0, false
}
