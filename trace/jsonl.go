package trace

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/CircuitSutra/VeeR-ISS/vm"
)

// jsonFault is the on-disk shape of one recorded fault, decoupled from
// vm.FaultEvent so the wire format doesn't shift with the internal struct.
type jsonFault struct {
	ID     string `json:"id"`
	VA     uint64 `json:"va"`
	Cause  string `json:"cause"`
	Reason string `json:"reason"`
}

// JSONLRecorder writes one JSON object per line per recorded fault. Unlike
// the teacher's JSONTracer, which wraps a single JSON array in brackets and
// commas, this format is line-delimited: a crash mid-run still leaves every
// line written so far parseable.
type JSONLRecorder struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewJSONLRecorder creates path (truncating it if it exists) and returns a
// Recorder that appends one line per fault. An empty path derives a unique
// filename from a generated id.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if path == "" {
		path = xid.New().String() + ".jsonl"
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	r := &JSONLRecorder{w: f, c: f}
	atexit.Register(func() { _ = r.Close() })

	return r, nil
}

// RecordFault implements vm.Recorder.
func (r *JSONLRecorder) RecordFault(ev vm.FaultEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, err := json.Marshal(jsonFault{
		ID:     xid.New().String(),
		VA:     ev.VA,
		Cause:  ev.Cause.String(),
		Reason: ev.Reason,
	})
	if err != nil {
		return
	}

	line = append(line, '\n')
	_, _ = r.w.Write(line)
}

// Close releases the underlying file.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.c == nil {
		return nil
	}
	c := r.c
	r.c = nil

	return c.Close()
}
