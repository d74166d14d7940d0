package vmm

import (
	"nachos/kernel/errors"
	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
)

// PageTableEntry maps one virtual page of a process's address space onto
// physical memory.
type PageTableEntry struct {
	VPN      uint32
	Frame    pmm.Frame
	Valid    bool
	ReadOnly bool
	Used     bool
	Dirty    bool
}

// AddressSpace is a process's page table: a flat array indexed by virtual
// page number, backed by frames drawn from a kernel-wide pool.
type AddressSpace struct {
	pages []PageTableEntry
	pool  *pmm.FreeFramePool
}

// NewAddressSpace returns an address space of numPages entries, all
// initially invalid, backed by pool.
func NewAddressSpace(numPages int, pool *pmm.FreeFramePool) *AddressSpace {
	pages := make([]PageTableEntry, numPages)
	for i := range pages {
		pages[i] = PageTableEntry{VPN: uint32(i), Frame: pmm.InvalidFrame}
	}
	return &AddressSpace{pages: pages, pool: pool}
}

// NumPages returns the number of virtual pages in this address space.
func (as *AddressSpace) NumPages() int { return len(as.pages) }

// Entry returns a copy of the page table entry for vpn, and whether vpn
// is within this address space's range.
func (as *AddressSpace) Entry(vpn uint32) (PageTableEntry, bool) {
	if int(vpn) >= len(as.pages) {
		return PageTableEntry{}, false
	}
	return as.pages[vpn], true
}

// translate resolves a virtual address to a physical byte offset into
// physical memory. It never panics: an out-of-range page, an invalid
// entry, or a write to a read-only page all simply report !ok, leaving
// the caller (a syscall, or the page-fault handler) to decide what to do
// — the spec's "never crash" bounded-copy requirement.
func (as *AddressSpace) translate(vaddr uint32, forWrite bool) (paddr uint32, ok bool) {
	vpn := vaddr >> mem.PageShift
	offset := vaddr & uint32(mem.PageSize-1)
	if int(vpn) >= len(as.pages) {
		return 0, false
	}
	e := &as.pages[vpn]
	if !e.Valid {
		return 0, false
	}
	if forWrite && e.ReadOnly {
		return 0, false
	}
	e.Used = true
	if forWrite {
		e.Dirty = true
	}
	return uint32(e.Frame.Address()) + offset, true
}

// ReadVirtualMemory copies up to length bytes starting at vaddr in this
// address space's virtual memory into data[offset:], stopping early (and
// returning the partial count) the moment a page fails to translate.
// Crossing page boundaries within one call is supported, since a caller
// reading a NUL-terminated string or an argv block has no guarantee its
// request stays within a single page.
func (as *AddressSpace) ReadVirtualMemory(physMem []byte, vaddr uint32, data []byte, offset, length int) int {
	transferred := 0
	for transferred < length {
		paddr, ok := as.translate(vaddr+uint32(transferred), false)
		if !ok {
			break
		}
		n := length - transferred
		if avail := int(as.frameLimit(paddr) - paddr); avail < n {
			n = avail
		}
		copy(data[offset+transferred:offset+transferred+n], physMem[paddr:uint32(paddr)+uint32(n)])
		transferred += n
	}
	return transferred
}

// WriteVirtualMemory copies up to length bytes from data[offset:] into
// this address space's virtual memory starting at vaddr, with the same
// bounded, never-crash behavior as ReadVirtualMemory.
func (as *AddressSpace) WriteVirtualMemory(physMem []byte, vaddr uint32, data []byte, offset, length int) int {
	transferred := 0
	for transferred < length {
		paddr, ok := as.translate(vaddr+uint32(transferred), true)
		if !ok {
			break
		}
		n := length - transferred
		if avail := int(as.frameLimit(paddr) - paddr); avail < n {
			n = avail
		}
		copy(physMem[paddr:uint32(paddr)+uint32(n)], data[offset+transferred:offset+transferred+n])
		transferred += n
	}
	return transferred
}

// frameLimit returns the physical address one past the end of the frame
// paddr falls in, the boundary a single translated copy must not cross.
func (as *AddressSpace) frameLimit(paddr uint32) uint32 {
	frameStart := paddr &^ uint32(mem.PageSize-1)
	return frameStart + uint32(mem.PageSize)
}

// AllocatePage services a page fault on vpn: it draws one frame from the
// pool (blocking if none are free) and installs it as vpn's mapping. It
// does not itself rewind or replay the faulting instruction; that is the
// caller's responsibility once AllocatePage returns.
func (as *AddressSpace) AllocatePage(vpn uint32) bool {
	if int(vpn) >= len(as.pages) {
		return false
	}
	frame := as.pool.Allocate()
	as.pages[vpn] = PageTableEntry{VPN: vpn, Frame: frame, Valid: true}
	return true
}

// LoadSections populates this address space's sections from loader,
// allocating one frame per section page and copying its contents in.
// Sections must be contiguous starting at VPN 0, matching the loader's
// own layout assumption; ErrFragmentedExecutable is returned otherwise.
func (as *AddressSpace) LoadSections(physMem []byte, loader machine.Loader) error {
	nextVPN := uint32(0)
	sectionPageIndex := 0
	for i := 0; i < loader.NumSections(); i++ {
		section := loader.Section(i)
		firstVPN, length, readOnly := section.FirstVPN, section.Length, section.ReadOnly
		if firstVPN != nextVPN {
			return errors.ErrFragmentedExecutable
		}
		for page := uint32(0); page < length; page++ {
			vpn := firstVPN + page
			if int(vpn) >= len(as.pages) {
				return errors.ErrInsufficientMemory
			}
			frame := as.pool.Allocate()
			if err := loader.LoadPage(sectionPageIndex, physMem, frame); err != nil {
				as.pool.Release(frame)
				return err
			}
			as.pages[vpn] = PageTableEntry{VPN: vpn, Frame: frame, Valid: true, ReadOnly: readOnly}
			sectionPageIndex++
		}
		nextVPN += length
	}
	return nil
}

// ReleaseFrames returns every frame this address space currently owns to
// the pool and marks every entry invalid. Called once on process exit.
func (as *AddressSpace) ReleaseFrames() {
	for i := range as.pages {
		if as.pages[i].Valid {
			as.pool.Release(as.pages[i].Frame)
			as.pages[i].Valid = false
			as.pages[i].Frame = pmm.InvalidFrame
		}
	}
}
