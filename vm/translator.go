package vm

import (
	"math/bits"

	"github.com/CircuitSutra/VeeR-ISS/vm/tlb"
)

// baseOffsetMask extracts the low 12 bits of a virtual address: the
// hardware page offset, which is always 4KiB-granular regardless of the
// translator's configured page size. The configured, possibly larger, page
// size is used by the TLB's bookkeeping (lookup and insert) and by the walk
// to turn table page numbers into table base addresses.
const baseOffsetMask = 0xFFF

// Translator orchestrates Sv32/Sv39/Sv48 address translation for one
// simulated hart: TLB lookup, fallback page-table walk, permission
// checking, and accessed/dirty update. One instance exists per hart and is
// driven synchronously from that hart's instruction loop; it never
// retries and never blocks.
type Translator struct {
	mem        Memory
	hartIndex  int
	recorder   Recorder
	softTLB    *tlb.TLB

	mode                 Mode
	pageTableRoot        uint64
	asid                 uint32
	execReadable         bool
	supervisorAccessUser bool
	faultOnFirstAccess   bool

	pageSize  uint64
	pageBits  uint
	pageMask  uint64
}

// New creates a Translator in Bare mode, backed by mem, with a TLB sized
// for tlbCapacity entries. hartIndex identifies the owning hart to mem's
// Write calls.
func New(mem Memory, hartIndex, tlbCapacity int) *Translator {
	return &Translator{
		mem:       mem,
		hartIndex: hartIndex,
		softTLB:   tlb.New(tlbCapacity),
		mode:      Bare,
		pageSize:  4096,
		pageBits:  12,
		pageMask:  0xFFF,
	}
}

// SetRecorder attaches a diagnostics Recorder. A nil Recorder (the
// default) disables diagnostics entirely; Translate's semantics never
// depend on whether one is attached.
func (t *Translator) SetRecorder(r Recorder) { t.recorder = r }

// SetPageTableRoot sets the root page-table's page number.
func (t *Translator) SetPageTableRoot(pageNumber uint64) { t.pageTableRoot = pageNumber }

// SetMode sets the active translation mode.
func (t *Translator) SetMode(m Mode) { t.mode = m }

// SetAddressSpace sets the current address-space id.
func (t *Translator) SetAddressSpace(asid uint32) { t.asid = asid }

// SetExecReadable sets the MXR control bit: whether executable pages are
// also considered readable.
func (t *Translator) SetExecReadable(v bool) { t.execReadable = v }

// SetSupervisorAccessUser sets the SUM control bit: whether supervisor
// mode may access user-accessible pages.
func (t *Translator) SetSupervisorAccessUser(v bool) { t.supervisorAccessUser = v }

// SetFaultOnFirstAccess selects whether a walk that reaches a leaf with a
// clear accessed (or, on a write, dirty) bit faults instead of updating
// the bit and proceeding.
func (t *Translator) SetFaultOnFirstAccess(v bool) { t.faultOnFirstAccess = v }

// SetPageSize validates and applies a new page size for the active mode.
// size must be a power of two and a member of the active mode's allowed
// set (spec.md §4.3); Sv32 allows only 4KiB, Sv39 and Sv48 additionally
// allow the superpage sizes their extra levels imply. On rejection,
// SetPageSize returns false and leaves all state unchanged.
func (t *Translator) SetPageSize(size uint64) bool {
	if size == 0 || size&(size-1) != 0 {
		return false
	}

	ok := false
	for _, allowed := range allowedPageSizes[t.mode] {
		if allowed == size {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}

	t.pageSize = size
	t.pageBits = uint(bits.Len64(size) - 1)
	t.pageMask = size - 1

	return true
}

// InvalidateTLB flushes every TLB entry.
func (t *Translator) InvalidateTLB() { t.softTLB.InvalidateAll() }

// InvalidateTLBForASID flushes every non-global TLB entry for asid.
func (t *Translator) InvalidateTLBForASID(asid uint32) { t.softTLB.InvalidateASID(asid) }

// InvalidateTLBForVA flushes the single TLB entry for asid/va, if any.
func (t *Translator) InvalidateTLBForVA(asid uint32, va uint64) {
	t.softTLB.InvalidateVA(asid, va>>t.pageBits)
}

// Translate performs virtual-to-physical address translation. Exactly one
// of read, write, exec is expected to be true. On success it returns the
// physical address and Cause None; on failure it returns the Cause
// implied by the access intent (spec.md §4.3, §7).
func (t *Translator) Translate(
	va uint64, priv Privilege, read, write, exec bool,
) (uint64, Cause) {
	if t.mode == Bare {
		return va, None
	}

	vpn := va >> t.pageBits
	if entry, hit := t.softTLB.Find(vpn, t.asid); hit {
		return t.fromTLBHit(entry, va, priv, read, write, exec)
	}

	layout := layoutFor(t.mode)

	if layout.VAWidth != 0 && !canonical(va, layout) {
		cause := causeFor(read, write, exec)
		t.trace(FaultEvent{VA: va, Cause: cause, Reason: "non-canonical address"})
		return 0, cause
	}

	pa, entry, cause := t.walk(layout, va, priv, read, write, exec)
	if cause != None {
		t.trace(FaultEvent{VA: va, Cause: cause, Reason: "page-table walk"})
		return 0, cause
	}

	t.softTLB.Insert(entry)

	return pa, None
}

func canonical(va uint64, l *Layout) bool {
	extBits := 64 - l.VAWidth
	signBit := (va >> (l.VAWidth - 1)) & 1
	hi := va >> l.VAWidth

	expect := uint64(0)
	if signBit == 1 {
		expect = mask(extBits)
	}

	return hi == expect
}

func (t *Translator) fromTLBHit(
	e *tlb.Entry, va uint64, priv Privilege, read, write, exec bool,
) (uint64, Cause) {
	if cause := t.checkPermission(priv, e.User, e.Read, e.Write, e.Exec, read, write, exec); cause != None {
		t.trace(FaultEvent{VA: va, Cause: cause, Reason: "permission"})
		return 0, cause
	}

	if !e.Accessed || (write && !e.Dirty) {
		if t.faultOnFirstAccess {
			cause := causeFor(read, write, exec)
			t.trace(FaultEvent{VA: va, Cause: cause, Reason: "first access"})
			return 0, cause
		}
		e.Accessed = true
		if write {
			e.Dirty = true
		}
	}

	pa := (e.PPN << t.pageBits) | (va & t.pageMask)

	return pa, None
}

// checkPermission applies the permission rules common to both a TLB hit
// and a freshly walked leaf PTE (spec.md §4.3).
func (t *Translator) checkPermission(
	priv Privilege, user, r, w, x, read, write, exec bool,
) Cause {
	if priv == User && !user {
		return causeFor(read, write, exec)
	}
	if priv == Supervisor && user && !t.supervisorAccessUser {
		return causeFor(read, write, exec)
	}

	effRead := r || (t.execReadable && x)
	if read && !effRead {
		return causeFor(read, write, exec)
	}
	if write && !w {
		return causeFor(read, write, exec)
	}
	if exec && !x {
		return causeFor(read, write, exec)
	}

	return None
}

// walk performs the multi-level page-table walk described in spec.md
// §4.3. It returns the assembled physical address and a TLB entry
// mirroring the leaf PTE on success, or Cause on failure.
func (t *Translator) walk(
	l *Layout, va uint64, priv Privilege, read, write, exec bool,
) (uint64, tlb.Entry, Cause) {
	fail := causeFor(read, write, exec)

	root := t.pageTableRoot * t.pageSize
	level := l.Levels - 1

	buf := make([]byte, l.PTEBytes)
	var pte PTE
	var pteAddr uint64

	for {
		vpn := vpnAt(va, l, level)
		pteAddr = root + vpn*uint64(l.PTEBytes)

		if !t.mem.Read(pteAddr, buf) {
			return 0, tlb.Entry{}, fail
		}
		pte = decodePTE(buf)

		if !pte.Valid() || (pte.Write() && !pte.Read()) {
			return 0, tlb.Entry{}, fail
		}

		if pte.Read() || pte.Exec() {
			break
		}

		level--
		if level < 0 {
			return 0, tlb.Entry{}, fail
		}
		root = pte.PPN(l) * t.pageSize
	}

	if cause := t.checkPermission(priv, pte.User(), pte.Read(), pte.Write(), pte.Exec(), read, write, exec); cause != None {
		return 0, tlb.Entry{}, cause
	}

	for j := 0; j < level; j++ {
		if pte.PPNAt(l, j) != 0 {
			return 0, tlb.Entry{}, fail
		}
	}

	if !pte.Accessed() || (write && !pte.Dirty()) {
		if t.faultOnFirstAccess {
			return 0, tlb.Entry{}, fail
		}

		pte.SetAccessed()
		if write {
			pte.SetDirty()
		}

		encodePTE(buf, pte)
		if !t.mem.Write(t.hartIndex, pteAddr, buf) {
			return 0, tlb.Entry{}, fail
		}
	}

	pa := va & baseOffsetMask
	for j := 0; j < level; j++ {
		pa |= vpnAt(va, l, j) << l.PPNShifts[j]
	}
	for j := level; j < l.Levels; j++ {
		pa |= pte.PPNAt(l, j) << l.PPNShifts[j]
	}

	entry := tlb.Entry{
		VPN:      va >> t.pageBits,
		PPN:      pa >> t.pageBits,
		ASID:     t.asid,
		Valid:    true,
		Global:   pte.Global(),
		User:     pte.User(),
		Read:     pte.Read(),
		Write:    pte.Write(),
		Exec:     pte.Exec(),
		Accessed: pte.Accessed(),
		Dirty:    pte.Dirty(),
	}

	return pa, entry, None
}

func (t *Translator) trace(ev FaultEvent) {
	if t.recorder == nil {
		return
	}
	t.recorder.RecordFault(ev)
}
