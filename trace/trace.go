// Package trace provides diagnostic recorders for the translator's page
// faults. A Recorder is entirely optional and nil-safe from the
// translator's point of view (see vm.Translator.SetRecorder): it observes
// the hot path, it never participates in it.
package trace

import "github.com/CircuitSutra/VeeR-ISS/vm"

// Recorder is the union of every backend's capability: recording a fault
// event and flushing/closing whatever storage backs it. vm.Translator
// only requires the RecordFault half.
type Recorder interface {
	vm.Recorder
	Close() error
}
