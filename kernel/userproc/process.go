package userproc

import (
	"encoding/binary"
	"sync"

	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/threads"
)

const (
	stackPages       = 8
	maxNameLength    = 256
	maxArgLength     = 256
	maxArgCount      = 64
	defaultUserPages = stackPages + 1
)

// UserProcess is one running program: its address space, register file,
// open-file table, and the bookkeeping join needs to find its children.
// Every field below is touched only by the single kernel thread backing
// this process, with one documented exception: exitStatus, which a
// parent reads after Join returns, synchronized by Finish/Join's own
// locking rather than a dedicated mutex here.
type UserProcess struct {
	sys       *System
	pid       int
	parentPid int

	proc *machine.Processor
	as   *vmm.AddressSpace

	fds       map[int]machine.File
	fdOffsets map[int]int
	nextFd    int

	children map[int]*UserProcess
	thread   *threads.Thread

	exitStatus int
	exitOnce   sync.Once
}

// PID returns the process's unique identifier.
func (p *UserProcess) PID() int { return p.pid }

// RunProgram looks up name in the system's program table and runs it on
// the calling goroutine with the given arguments, exiting the process
// with status 0 once it returns. It is how the root process starts its
// first program: unlike Exec, there is no parent thread to fork from,
// since the root process already runs on the kernel's main thread.
func (p *UserProcess) RunProgram(name string, args []string) bool {
	prog, ok := p.sys.lookupProgram(name)
	if !ok {
		return false
	}
	prog(p, args)
	p.doExit(0)
	return true
}

// Processor exposes the register file a page-fault or syscall trap would
// read and rewrite; kept for a future instruction-dispatch loop to use.
func (p *UserProcess) Processor() *machine.Processor { return p.proc }

// Execute loads an executable's sections into a freshly sized address
// space, writes its argv block into the final page, and points the
// register file at its entry point with argc/argv in A0/A1. Neither the
// boot sequence nor Exec (syscall 2) calls it: the root process starts
// through RunProgram and Exec runs pre-registered Programs, since no
// instruction loop exists to interpret a loaded binary's object code.
func (p *UserProcess) Execute(loader machine.Loader, args []string) bool {
	if len(args) > maxArgCount {
		return false
	}

	numSectionPages := uint32(0)
	for i := 0; i < loader.NumSections(); i++ {
		numSectionPages += loader.Section(i).Length
	}
	numPages := int(numSectionPages) + stackPages + 1 // +1 for the argv page

	p.as = vmm.NewAddressSpace(numPages, p.sys.Pool)
	if err := p.as.LoadSections(p.sys.PhysMem, loader); err != nil {
		tracef("process %d: load failed: %v", p.pid, err)
		return false
	}

	argvVPN := uint32(numPages - 1)
	if !p.as.AllocatePage(argvVPN) {
		return false
	}
	argvBase, ok := p.writeArgv(argvVPN, args)
	if !ok {
		tracef("process %d: argv block does not fit in one page", p.pid)
		return false
	}

	p.proc.PC = loader.EntryPoint()
	p.proc.NextPC = p.proc.PC + 4
	p.proc.SP = uint32(vmm.Page(argvVPN).Address())
	p.proc.A0 = uint32(len(args))
	p.proc.A1 = argvBase
	return true
}

// writeArgv lays out argc NUL-terminated strings in the page at vpn:
// a table of argc pointers followed by the strings themselves, mirroring
// the layout a real C runtime's argv would have in user memory. It
// reports the base address of the pointer table, and false if the
// encoded block overflows one page.
func (p *UserProcess) writeArgv(vpn uint32, args []string) (uint32, bool) {
	base := uint32(vmm.Page(vpn).Address())
	ptrTableSize := len(args) * 4

	var strings []byte
	ptrs := make([]uint32, len(args))
	offset := ptrTableSize
	for i, a := range args {
		ptrs[i] = base + uint32(offset)
		strings = append(strings, []byte(a)...)
		strings = append(strings, 0)
		offset += len(a) + 1
	}
	if offset > int(mem.PageSize) {
		return 0, false
	}

	page := make([]byte, offset)
	for i, ptr := range ptrs {
		binary.LittleEndian.PutUint32(page[i*4:i*4+4], ptr)
	}
	copy(page[ptrTableSize:], strings)

	n := p.as.WriteVirtualMemory(p.sys.PhysMem, base, page, 0, len(page))
	return base, n == len(page)
}

// readVirtualMemoryString reads at most maxLength bytes starting at
// vaddr and returns the string up to (not including) its first NUL byte.
// ok is false if no NUL was found within maxLength bytes, or the
// translation failed before one was reached.
func (p *UserProcess) readVirtualMemoryString(vaddr uint32, maxLength int) (string, bool) {
	buf := make([]byte, maxLength)
	n := p.as.ReadVirtualMemory(p.sys.PhysMem, vaddr, buf, 0, maxLength)
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return string(buf[:i]), true
		}
	}
	return "", false
}

// allocFd returns the next free descriptor number. Descriptors are
// handed out monotonically and never reused within a process's lifetime,
// so the "already taken" branch below can never actually trigger; it is
// kept only as the same defensive check a descriptor table that does
// recycle numbers would need.
func (p *UserProcess) allocFd() int {
	fd := p.nextFd
	if _, taken := p.fds[fd]; taken {
		return -1
	}
	p.nextFd++
	return fd
}

// doExit runs exactly once per process: it closes every descriptor but
// the console's, releases the address space's frames back to the pool,
// records status for a joining parent, deregisters the pid, and halts
// the machine if this was the last live process. status is ignored on
// the second and later calls.
func (p *UserProcess) doExit(status int) {
	p.exitOnce.Do(func() {
		for fd, f := range p.fds {
			if fd > 1 {
				f.Close()
			}
		}
		p.fds = nil
		if p.as != nil {
			p.as.ReleaseFrames()
		}
		p.exitStatus = status

		p.sys.mu.Lock()
		delete(p.sys.processes, p.pid)
		p.sys.aliveCount--
		last := p.sys.aliveCount == 0
		p.sys.mu.Unlock()

		tracef("process %d: exit(%d)", p.pid, status)

		if last {
			p.sys.haltMachine()
		}
		if p.thread != nil {
			p.thread.Finish(status)
		}
	})
}
