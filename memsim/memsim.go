// Package memsim provides a sparse, unit-allocated implementation of
// vm.Memory for use by tests and the rvinspect CLI. It is not part of the
// simulated core: the core only ever depends on the vm.Memory interface
// (spec.md §6), never on a concrete backing store.
package memsim

import "github.com/CircuitSutra/VeeR-ISS/vm"

const unitSize = 4096

// Memory is a byte-addressable physical memory backed by 4KiB units,
// allocated lazily on first touch. Grounded on the teacher's
// memory.Storage, adapted to vm.Memory's bool-success signature.
type Memory struct {
	capacity uint64
	units    map[uint64][]byte
}

// New creates a Memory of the given capacity in bytes.
func New(capacity uint64) *Memory {
	return &Memory{capacity: capacity, units: make(map[uint64][]byte)}
}

func (m *Memory) unit(base uint64, alloc bool) []byte {
	u, ok := m.units[base]
	if !ok {
		if !alloc {
			return nil
		}
		u = make([]byte, unitSize)
		m.units[base] = u
	}
	return u
}

// Read implements vm.Memory. Reads from an unallocated unit return zeros.
func (m *Memory) Read(addr uint64, dst []byte) bool {
	if addr+uint64(len(dst)) > m.capacity {
		return false
	}

	cur := addr
	off := 0
	for off < len(dst) {
		base := cur - cur%unitSize
		inUnit := cur % unitSize
		n := min64(uint64(len(dst)-off), unitSize-inUnit)

		if u := m.unit(base, false); u != nil {
			copy(dst[off:off+int(n)], u[inUnit:inUnit+n])
		} else {
			for i := off; i < off+int(n); i++ {
				dst[i] = 0
			}
		}

		cur += n
		off += int(n)
	}

	return true
}

// Write implements vm.Memory.
func (m *Memory) Write(_ int, addr uint64, src []byte) bool {
	if addr+uint64(len(src)) > m.capacity {
		return false
	}

	cur := addr
	off := 0
	for off < len(src) {
		base := cur - cur%unitSize
		inUnit := cur % unitSize
		n := min64(uint64(len(src)-off), unitSize-inUnit)

		u := m.unit(base, true)
		copy(u[inUnit:inUnit+n], src[off:off+int(n)])

		cur += n
		off += int(n)
	}

	return true
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

var _ vm.Memory = (*Memory)(nil)
