// Package errors defines the sentinel error values shared across the
// kernel's subpackages.
package errors

// KernelError is a trivial error implementation backed by a string
// constant so that sentinel errors can be declared as package-level
// values without an allocation, the same pattern the teacher uses for
// its own kernel errors.
type KernelError string

// Error implements the error interface.
func (err KernelError) Error() string {
	return string(err)
}

var (
	// ErrInvalidParamValue names an out-of-range argument to a kernel
	// API. No API returns it: the schedulers' SetPriority panics on an
	// out-of-range priority instead.
	ErrInvalidParamValue = KernelError("invalid parameter value")

	// ErrNoFreeFrames names an empty free-frame pool. No API returns it:
	// FreeFramePool.Allocate blocks until a frame is released instead.
	ErrNoFreeFrames = KernelError("no free frames available")

	// ErrBadAddress names a virtual address that does not map to valid
	// memory. No API returns it: the address-translation helpers report
	// failure as a short transfer count instead.
	ErrBadAddress = KernelError("virtual address does not translate")

	// ErrFragmentedExecutable is returned when an executable's sections
	// are not contiguous starting at VPN 0.
	ErrFragmentedExecutable = KernelError("executable sections are not contiguous at vpn 0")

	// ErrArgsTooLong names an argv layout that does not fit within a
	// single page. No API returns it: Execute reports that case as false.
	ErrArgsTooLong = KernelError("arguments do not fit in one page")

	// ErrInsufficientMemory is returned by AddressSpace.LoadSections when
	// a section page falls beyond the address space's last virtual page.
	ErrInsufficientMemory = KernelError("insufficient physical memory for process")

	// ErrNoSuchProcess names a pid that is not a direct child of the
	// calling process. No API returns it: the join syscall returns -1.
	ErrNoSuchProcess = KernelError("no such child process")

	// ErrFileNotFound names a file name that does not resolve to an
	// existing file. No API returns it: FileSystem.Open reports false.
	ErrFileNotFound = KernelError("file not found")
)
