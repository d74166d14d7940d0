// Package pmm manages the kernel-wide pool of physical memory frames that
// back every process's page table.
package pmm

import (
	"math"

	"nachos/kernel/mem"
)

// Frame describes a physical memory frame index.
type Frame uintptr

// InvalidFrame is returned by the pool when no frame can be reserved.
const InvalidFrame = Frame(math.MaxUint64)

// IsValid returns true if this is a valid frame.
func (f Frame) IsValid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address for this frame.
func (f Frame) Address() uintptr {
	return uintptr(f << mem.PageShift)
}
