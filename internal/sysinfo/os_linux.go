//go:build linux

package sysinfo

import "golang.org/x/sys/unix"

func unameIdentity() (version, release, machine string, err error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", "", "", err
	}
	return utsString(uts.Version), utsString(uts.Release), utsString(uts.Machine), nil
}

func utsString(b [65]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
