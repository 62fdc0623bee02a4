package cmdline

import (
	"runtime"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
)

// javaOSNames maps GOOS to the os.name a JVM reports on that host.
var javaOSNames = map[string]string{
	"windows": "Windows",
	"darwin":  "Mac OS X",
	"linux":   "Linux",
	"freebsd": "FreeBSD",
	"openbsd": "OpenBSD",
	"netbsd":  "NetBSD",
	"solaris": "SunOS",
	"aix":     "AIX",
}

// HostOSName returns the host OS name using JVM naming. It is computed once
// per process.
var HostOSName = sync.OnceValue(func() string {
	return osName(runtime.GOOS, platform)
})

func platform() string {
	info, err := host.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.Platform
}

func osName(goos string, platform func() string) string {
	if name, ok := javaOSNames[goos]; ok {
		return name
	}
	if p := platform(); p != "" {
		return p
	}
	return goos
}

// IsWindows reports whether name contains "win", ignoring case.
func IsWindows(name string) bool {
	return strings.Contains(strings.ToLower(name), "win")
}

// Target returns target when set, otherwise HostOSName.
func Target(target string) string {
	if target != "" {
		return target
	}
	return HostOSName()
}
