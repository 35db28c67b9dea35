package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer

	err := run([]string{"worker"}, strings.NewReader(`{"workload":"primes","start":100,"size":100}`), &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := `{"start":100,"size":100,"count":21}` + "\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunRejectsUnknownArgs(t *testing.T) {
	var out bytes.Buffer

	err := run([]string{"serve"}, strings.NewReader("{}"), &out)
	if err == nil {
		t.Fatal("expected error for unexpected argument")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunUnknownWorkload(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, strings.NewReader(`{"workload":"fib","size":10}`), &out)
	if err == nil {
		t.Fatal("expected error for unknown workload")
	}
}
