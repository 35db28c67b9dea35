//go:build darwin

package sysinfo

import (
	"golang.org/x/sys/unix"
)

func detect(info *Info) {
	if release, err := unix.Sysctl("kern.osrelease"); err == nil {
		info.Kernel = release
	}

	if name, err := unix.Sysctl("machdep.cpu.brand_string"); err == nil {
		info.CPUName = name
	}

	if mem, err := unix.SysctlUint64("hw.memsize"); err == nil {
		info.TotalMemoryBytes = mem
	}
}
