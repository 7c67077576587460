// Package vm implements the RISC-V Sv32/Sv39/Sv48 page-table walk and the
// software TLB that caches its results.
package vm

// Mode selects the active virtual-memory translation scheme.
type Mode int

// Supported modes. Sv57 and Sv64 are out of scope.
const (
	Bare Mode = iota
	Sv32
	Sv39
	Sv48
)

// Layout describes the per-level geometry of a page-table walk: how many
// levels it has, how wide a PTE is on the wire, and the bit slices the
// virtual and physical page numbers occupy at each level. A walk is
// written once, parameterized by the Layout for the active Mode, rather
// than specialized per mode.
type Layout struct {
	Mode      Mode
	Levels    int
	PTEBytes  int
	VPNWidths []uint
	PPNWidths []uint
	PPNShifts []uint
	// VAWidth is the number of low bits of a virtual address that carry
	// meaning; bits above it must sign-extend bit VAWidth-1. Zero means
	// no canonical-address check applies (Sv32).
	VAWidth uint
}

var layouts = map[Mode]*Layout{
	Sv32: {
		Mode:      Sv32,
		Levels:    2,
		PTEBytes:  4,
		VPNWidths: []uint{10, 10},
		PPNWidths: []uint{10, 12},
		PPNShifts: []uint{12, 22},
	},
	Sv39: {
		Mode:      Sv39,
		Levels:    3,
		PTEBytes:  8,
		VPNWidths: []uint{9, 9, 9},
		PPNWidths: []uint{9, 9, 26},
		PPNShifts: []uint{12, 21, 30},
		VAWidth:   39,
	},
	Sv48: {
		Mode:      Sv48,
		Levels:    4,
		PTEBytes:  8,
		VPNWidths: []uint{9, 9, 9, 9},
		PPNWidths: []uint{9, 9, 9, 17},
		PPNShifts: []uint{12, 21, 30, 39},
		VAWidth:   48,
	},
}

// allowedPageSizes enumerates the page sizes SetPageSize accepts for each
// mode: Sv32 supports only the base 4KiB page; Sv39 and Sv48 additionally
// support the superpage sizes their extra levels imply.
var allowedPageSizes = map[Mode][]uint64{
	Sv32: {4096},
	Sv39: {4096, 2 * 1024 * 1024, 1024 * 1024 * 1024},
	Sv48: {4096, 2 * 1024 * 1024, 1024 * 1024 * 1024, 512 * 1024 * 1024 * 1024},
}

func layoutFor(m Mode) *Layout {
	return layouts[m]
}

// vpnAt returns the vpn[level] slice of va under l.
func vpnAt(va uint64, l *Layout, level int) uint64 {
	shift := uint(12)
	for i := 0; i < level; i++ {
		shift += l.VPNWidths[i]
	}
	width := l.VPNWidths[level]

	return (va >> shift) & mask(width)
}

func mask(width uint) uint64 {
	return uint64(1)<<width - 1
}
