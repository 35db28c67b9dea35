// Parbench-worker is a minimal worker process for multi-process runs. It
// reads one chunk request from stdin, evaluates it and writes the result
// as JSON to stdout. Point worker_binary at it to avoid starting the full
// parbench CLI for every worker.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/weiihann/parbench/harness"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fatal("%v", err)
	}
}

// run accepts the "worker" argument the launcher appends so the binary is
// interchangeable with "parbench worker".
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("parbench-worker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, arg := range fs.Args() {
		if arg != harness.WorkerSubcommand {
			return fmt.Errorf("unexpected argument %q", arg)
		}
	}

	return harness.Serve(stdin, stdout)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "parbench-worker: "+format+"\n", args...)
	os.Exit(1)
}
