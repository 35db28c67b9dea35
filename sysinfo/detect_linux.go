//go:build linux

package sysinfo

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const cpuinfoPath = "/proc/cpuinfo"

func detect(info *Info) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		info.Kernel = unix.ByteSliceToString(uts.Release[:])
	}

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		info.TotalMemoryBytes = uint64(si.Totalram) * uint64(si.Unit)
	}

	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err == nil && mask.Count() > 0 {
		info.UsableCores = mask.Count()
	}

	if f, err := os.Open(cpuinfoPath); err == nil {
		defer f.Close()
		info.CPUName = parseCPUName(bufio.NewScanner(f))
	}
}

// parseCPUName returns the first "model name" value of a cpuinfo listing.
func parseCPUName(sc *bufio.Scanner) string {
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}

		if strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value)
		}
	}

	return ""
}
