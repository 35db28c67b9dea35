// Package harness runs workload chunks inside separate worker processes.
//
// The parent writes one JSON Request to the worker's stdin and reads one
// JSON workload.Result from its stdout. Nothing is shared between the two
// address spaces; results cross the boundary by value.
package harness

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/weiihann/parbench/workload"
)

// Request asks a worker process to evaluate the chunk
// [Start, Start+Size) of the named workload.
type Request struct {
	Workload string `json:"workload"`
	Start    int    `json:"start"`
	Size     int    `json:"size"`
}

// Serve is the worker side of the protocol. It decodes a Request from r,
// evaluates the named workload and encodes the Result to w.
func Serve(r io.Reader, w io.Writer) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	wl, err := workload.Lookup(req.Workload)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(wl.EvaluateRange(req.Start, req.Size)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}

func parseResult(r io.Reader) (workload.Result, error) {
	var result workload.Result
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return workload.Result{}, fmt.Errorf("decode JSON: %w", err)
	}

	return result, nil
}
