package machine

import (
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
)

// Section describes one contiguous run of an executable's virtual pages.
type Section struct {
	FirstVPN uint32
	Length   uint32
	ReadOnly bool
}

// Loader is the executable format the kernel loads a process's sections
// through. Real object-code parsing (COFF-like section headers, symbol
// tables) is out of scope; this interface only names what UserProcess
// needs to populate a fresh address space.
type Loader interface {
	// EntryPoint returns the virtual address execution should begin at.
	EntryPoint() uint32

	// NumSections returns how many sections the executable has.
	NumSections() int

	// Section returns the i'th section's layout.
	Section(i int) Section

	// LoadPage copies one page's worth of bytes for sectionPageIndex
	// (the page's offset within the overall section list, 0-based) into
	// physMem at frame's physical address.
	LoadPage(sectionPageIndex int, physMem []byte, frame pmm.Frame) error
}

// MemLoader is an in-memory Loader backed by a byte slice per section,
// standing in for a parsed object file. It exists because no real COFF
// loader is in scope; tests and demo programs construct one directly
// instead of reading an executable off disk.
type MemLoader struct {
	entry    uint32
	sections []memSection
}

type memSection struct {
	firstVPN uint32
	readOnly bool
	data     []byte
}

// NewMemLoader returns a loader with no sections yet; call AddSection to
// populate it before passing it to UserProcess.Execute.
func NewMemLoader(entryPoint uint32) *MemLoader {
	return &MemLoader{entry: entryPoint}
}

// AddSection appends a section starting at firstVPN, backed by data. data
// is copied in page_size chunks as pages are loaded; a final partial page
// is zero-padded, matching how a linker pads a section's last page.
func (l *MemLoader) AddSection(firstVPN uint32, readOnly bool, data []byte) {
	l.sections = append(l.sections, memSection{firstVPN: firstVPN, readOnly: readOnly, data: data})
}

// EntryPoint implements Loader.
func (l *MemLoader) EntryPoint() uint32 { return l.entry }

// NumSections implements Loader.
func (l *MemLoader) NumSections() int { return len(l.sections) }

// Section implements Loader.
func (l *MemLoader) Section(i int) Section {
	s := l.sections[i]
	return Section{
		FirstVPN: s.firstVPN,
		Length:   pagesFor(len(s.data)),
		ReadOnly: s.readOnly,
	}
}

// LoadPage implements Loader. sectionPageIndex is resolved back to a
// (section, page-within-section) pair by walking the section list in
// order, the same traversal vmm.AddressSpace.LoadSections uses to assign
// VPNs.
func (l *MemLoader) LoadPage(sectionPageIndex int, physMem []byte, frame pmm.Frame) error {
	pageSize := int(mem.PageSize)
	remaining := sectionPageIndex
	for _, s := range l.sections {
		pages := int(pagesFor(len(s.data)))
		if remaining < pages {
			start := remaining * pageSize
			end := start + pageSize
			if end > len(s.data) {
				end = len(s.data)
			}
			dst := physMem[frame.Address() : frame.Address()+uintptr(pageSize)]
			for i := range dst {
				dst[i] = 0
			}
			copy(dst, s.data[start:end])
			return nil
		}
		remaining -= pages
	}
	return errOutOfRange
}

func pagesFor(n int) uint32 {
	return mem.Size(n).Pages()
}

type loaderError string

func (e loaderError) Error() string { return string(e) }

const errOutOfRange = loaderError("machine: section page index out of range")
