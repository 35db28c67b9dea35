// Package sysinfo describes the machine a benchmark ran on.
package sysinfo

import (
	"os"
	"runtime"
)

// Info is a snapshot of host properties recorded alongside results.
type Info struct {
	OS               string `json:"os"`
	Arch             string `json:"arch"`
	Kernel           string `json:"kernel,omitempty"`
	CPUName          string `json:"cpu_name,omitempty"`
	CPUCores         int    `json:"cpu_cores"`
	UsableCores      int    `json:"usable_cores"`
	TotalMemoryBytes uint64 `json:"total_memory_bytes,omitempty"`
	Hostname         string `json:"hostname,omitempty"`
	GoVersion        string `json:"go_version"`
}

// Collect gathers host information. Platform lookups that fail leave their
// fields empty rather than failing the whole snapshot.
func Collect() Info {
	info := Info{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		CPUCores:    runtime.NumCPU(),
		UsableCores: runtime.NumCPU(),
		GoVersion:   runtime.Version(),
	}

	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}

	detect(&info)

	return info
}

// TotalMemoryGB returns total memory in GiB, or 0 when unknown.
func (i Info) TotalMemoryGB() float64 {
	return float64(i.TotalMemoryBytes) / (1 << 30)
}
