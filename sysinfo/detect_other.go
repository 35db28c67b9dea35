//go:build !linux && !darwin

package sysinfo

func detect(*Info) {}
