//go:build !linux

package sysinfo

import "errors"

var errUnameUnsupported = errors.New("uname not supported on this platform")

func unameIdentity() (version, release, machine string, err error) {
	return "", "", "", errUnameUnsupported
}
