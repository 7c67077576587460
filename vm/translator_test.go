package vm

import (
	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func le4(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func le8(v uint64) []byte {
	b := le4(uint32(v))
	return append(b, le4(uint32(v>>32))...)
}

var _ = Describe("Translator", func() {
	var ctrl *gomock.Controller

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	It("passes addresses through unchanged in Bare mode", func() {
		mem := NewMockMemory(ctrl)
		tr := New(mem, 0, 8)

		pa, cause := tr.Translate(0xDEADBEEF, Machine, true, false, false)

		Expect(cause).To(Equal(None))
		Expect(pa).To(Equal(uint64(0xDEADBEEF)))
	})

	Context("Sv32 walk", func() {
		const va = uint64(0x402010)

		pointerPTE := le4(0x00000801) // valid, ppn=2 (next table)
		leafPTE := le4(0x000014D7)    // valid|read|write|user|accessed|dirty, ppn=5

		It("walks two levels, inserts the TLB, and hits on the second lookup", func() {
			mem := NewMockMemory(ctrl)
			mem.EXPECT().Read(uint64(4), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, pointerPTE); return true },
			).Times(1)
			mem.EXPECT().Read(uint64(8200), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, leafPTE); return true },
			).Times(1)

			tr := New(mem, 0, 8)
			tr.SetMode(Sv32)
			tr.SetPageTableRoot(0)

			pa, cause := tr.Translate(va, Machine, true, false, false)
			Expect(cause).To(Equal(None))
			Expect(pa).To(Equal(uint64(0x5010)))

			pa2, cause2 := tr.Translate(va, Machine, true, false, false)
			Expect(cause2).To(Equal(None))
			Expect(pa2).To(Equal(uint64(0x5010)))
		})
	})

	Context("Sv39 canonical address check", func() {
		It("rejects a non-canonical virtual address before walking", func() {
			mem := NewMockMemory(ctrl)
			tr := New(mem, 0, 8)
			tr.SetMode(Sv39)

			_, cause := tr.Translate(uint64(1)<<40, Machine, true, false, false)
			Expect(cause).To(Equal(LoadPageFault))
		})
	})

	Context("Sv48 misaligned superpage", func() {
		It("faults when a superpage leaf's low PPN bits are nonzero", func() {
			mem := NewMockMemory(ctrl)

			pointerPTE := le8(0xC01)        // valid, ppn=3 (next table)
			leafPTE := le8(0x70000407)      // valid|read|write, ppn[0]=1 (misaligned)

			mem.EXPECT().Read(uint64(8), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, pointerPTE); return true },
			).Times(1)
			mem.EXPECT().Read(uint64(12296), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, leafPTE); return true },
			).Times(1)

			tr := New(mem, 0, 8)
			tr.SetMode(Sv48)
			tr.SetPageTableRoot(0)

			va := uint64(1)<<39 | uint64(1)<<30
			_, cause := tr.Translate(va, Machine, true, false, false)
			Expect(cause).To(Equal(LoadPageFault))
		})
	})

	Context("accessed/dirty update on first write", func() {
		const va = uint64(0x402010)

		pointerPTE := le4(0x00000801) // valid, ppn=2
		leafNoAD := le4(0x00001417)   // valid|read|write|user, accessed=0 dirty=0

		It("sets accessed and dirty and writes the PTE back when not fault-on-first-access", func() {
			mem := NewMockMemory(ctrl)
			mem.EXPECT().Read(uint64(4), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, pointerPTE); return true },
			).Times(1)
			mem.EXPECT().Read(uint64(8200), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, leafNoAD); return true },
			).Times(1)
			mem.EXPECT().Write(0, uint64(8200), le4(0x000014D7)).Return(true).Times(1)

			tr := New(mem, 0, 8)
			tr.SetMode(Sv32)
			tr.SetPageTableRoot(0)

			pa, cause := tr.Translate(va, Machine, false, true, false)
			Expect(cause).To(Equal(None))
			Expect(pa).To(Equal(uint64(0x5010)))
		})

		It("faults instead of updating when fault-on-first-access is set", func() {
			mem := NewMockMemory(ctrl)
			mem.EXPECT().Read(uint64(4), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, pointerPTE); return true },
			).Times(1)
			mem.EXPECT().Read(uint64(8200), gomock.Any()).DoAndReturn(
				func(_ uint64, dst []byte) bool { copy(dst, leafNoAD); return true },
			).Times(1)

			tr := New(mem, 0, 8)
			tr.SetMode(Sv32)
			tr.SetPageTableRoot(0)
			tr.SetFaultOnFirstAccess(true)

			_, cause := tr.Translate(va, Machine, false, true, false)
			Expect(cause).To(Equal(StorePageFault))
		})
	})

	Context("page size validation", func() {
		It("accepts a superpage size valid for Sv39 and recomputes page bits", func() {
			mem := NewMockMemory(ctrl)
			tr := New(mem, 0, 8)
			tr.SetMode(Sv39)

			ok := tr.SetPageSize(2 * 1024 * 1024)
			Expect(ok).To(BeTrue())
			Expect(tr.pageBits).To(Equal(uint(21)))
		})

		It("rejects a page size not valid for the active mode", func() {
			mem := NewMockMemory(ctrl)
			tr := New(mem, 0, 8)
			tr.SetMode(Sv32)

			ok := tr.SetPageSize(2 * 1024 * 1024)
			Expect(ok).To(BeFalse())
			Expect(tr.pageBits).To(Equal(uint(12)))
		})
	})
})
