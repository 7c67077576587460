package vm

import "encoding/binary"

// pteFlagBits is the width, in bits, of the common low fields shared by
// every PTE layout: valid, read, write, exec, user, global, accessed,
// dirty, and a 2-bit reserved-for-supervisor field. The PPN slices start
// immediately above it.
const pteFlagBits = 10

const (
	pteValid    = 1 << 0
	pteRead     = 1 << 1
	pteWrite    = 1 << 2
	pteExec     = 1 << 3
	pteUser     = 1 << 4
	pteGlobal   = 1 << 5
	pteAccessed = 1 << 6
	pteDirty    = 1 << 7
)

// PTE is a page-table entry. Its on-the-wire encoding is little-endian and
// either 4 bytes (Sv32) or 8 bytes (Sv39/Sv48); PTE stores it unpacked as a
// single integer with mask/shift accessors rather than relying on
// language-level bit-struct punning.
type PTE struct {
	raw uint64
}

// Valid reports the PTE's valid bit.
func (p PTE) Valid() bool { return p.raw&pteValid != 0 }

// Read reports the PTE's read bit.
func (p PTE) Read() bool { return p.raw&pteRead != 0 }

// Write reports the PTE's write bit.
func (p PTE) Write() bool { return p.raw&pteWrite != 0 }

// Exec reports the PTE's exec bit.
func (p PTE) Exec() bool { return p.raw&pteExec != 0 }

// User reports the PTE's user-accessible bit.
func (p PTE) User() bool { return p.raw&pteUser != 0 }

// Global reports the PTE's global bit.
func (p PTE) Global() bool { return p.raw&pteGlobal != 0 }

// Accessed reports the PTE's accessed bit.
func (p PTE) Accessed() bool { return p.raw&pteAccessed != 0 }

// Dirty reports the PTE's dirty bit.
func (p PTE) Dirty() bool { return p.raw&pteDirty != 0 }

// SetAccessed sets the PTE's accessed bit.
func (p *PTE) SetAccessed() { p.raw |= pteAccessed }

// SetDirty sets the PTE's dirty bit.
func (p *PTE) SetDirty() { p.raw |= pteDirty }

func ppnShift(l *Layout, level int) uint {
	shift := uint(pteFlagBits)
	for i := 0; i < level; i++ {
		shift += l.PPNWidths[i]
	}
	return shift
}

// PPNAt returns the PPN slice at the given level under l.
func (p PTE) PPNAt(l *Layout, level int) uint64 {
	return (p.raw >> ppnShift(l, level)) & mask(l.PPNWidths[level])
}

// PPN returns the full physical page number: every level's slice
// concatenated, low level first.
func (p PTE) PPN(l *Layout) uint64 {
	var out uint64
	var shift uint
	for i := range l.PPNWidths {
		out |= p.PPNAt(l, i) << shift
		shift += l.PPNWidths[i]
	}
	return out
}

func decodePTE(buf []byte) PTE {
	if len(buf) == 4 {
		return PTE{raw: uint64(binary.LittleEndian.Uint32(buf))}
	}
	return PTE{raw: binary.LittleEndian.Uint64(buf)}
}

func encodePTE(buf []byte, p PTE) {
	if len(buf) == 4 {
		binary.LittleEndian.PutUint32(buf, uint32(p.raw))
		return
	}
	binary.LittleEndian.PutUint64(buf, p.raw)
}
