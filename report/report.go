// Package report serializes run output for downstream consumers: match
// results as JSON Lines on the primary stream, metadata lines as plain text,
// and an optional JSON array of candidate/match path pairs for the external
// review tool.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"photofingerprint/types"
)

// Emitter writes run output. All methods are safe for concurrent use; each
// emission is a single complete line, never interleaved across workers.
type Emitter struct {
	mu    sync.Mutex
	out   io.Writer
	enc   *json.Encoder
	pairs [][2]string
}

// NewEmitter creates an emitter writing to out.
func NewEmitter(out io.Writer) *Emitter {
	return &Emitter{
		out: out,
		enc: json.NewEncoder(out),
	}
}

// EmitMatch writes one match result as a single JSON line and records the
// path pair for WritePairs.
func (e *Emitter) EmitMatch(result types.MatchResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(result); err != nil {
		return fmt.Errorf("cannot emit match result: %v", err)
	}
	e.pairs = append(e.pairs, [2]string{result.Candidate, result.Match})
	return nil
}

// EmitLine writes one plain text line, used for path<TAB>timestamp records in
// metadata mode.
func (e *Emitter) EmitLine(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintln(e.out, line); err != nil {
		return fmt.Errorf("cannot emit line: %v", err)
	}
	return nil
}

// MatchCount returns the number of matches emitted so far.
func (e *Emitter) MatchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pairs)
}

// WritePairs writes every emitted [candidate, match] pair as one JSON array
// to the given file, the format loaded by the duplicate review tool.
func (e *Emitter) WritePairs(path string) error {
	e.mu.Lock()
	pairs := make([][2]string, len(e.pairs))
	copy(pairs, e.pairs)
	e.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create pairs file %s: %v", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pairs); err != nil {
		f.Close()
		return fmt.Errorf("cannot write pairs file %s: %v", path, err)
	}
	return f.Close()
}
