// Package vmm implements the per-process address space: a flat array of
// page-table entries mapping a process's virtual pages onto physical
// frames handed out by pmm, plus the bounds-checked read/write helpers
// user processes use to cross the user/kernel boundary.
package vmm

import "nachos/kernel/mem"

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address this page begins at.
func (p Page) Address() uintptr {
	return uintptr(p << mem.PageShift)
}

// PageFromAddress returns the Page that contains virtAddr. Addresses that
// are not page-aligned are rounded down to the page that contains them.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr & ^(uintptr(mem.PageSize - 1))) >> mem.PageShift)
}
