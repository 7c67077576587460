package vm

// Memory is the backing-store collaborator the translator reads page-table
// entries from and writes accessed/dirty updates back to. It is the only
// surface this package requires from the surrounding simulator's Memory
// object; everything else about that object (byte/word access, ELF
// loading, and so on) is out of scope here.
type Memory interface {
	// Read fills dst with the bytes at the given physical address.
	// It returns false on any failure (out of range, PMP denial); the
	// translator treats a false return as a page fault.
	Read(addr uint64, dst []byte) bool

	// Write stores src at the given physical address on behalf of
	// hartIndex. It returns false on any failure.
	Write(hartIndex int, addr uint64, src []byte) bool
}
