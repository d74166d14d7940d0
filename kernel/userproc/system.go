// Package userproc implements the user-process execution environment: a
// per-process address space and file-descriptor table layered over
// kernel/mem/vmm and kernel/machine, the ten-call syscall interface, and
// process lifecycle (exec, join, exit) including parent/child tracking.
//
// Real instruction execution is out of scope (see kernel/machine's
// package doc), so a "running" child process here executes a Go closure
// registered under a program name rather than interpreted object code —
// the same role kernel/machine.MemLoader plays for the (likewise
// out-of-scope) object file format. Verbose gates optional syscall
// tracing, the package's stand-in for the original's dbgProcess flag.
package userproc

import (
	"log"
	"sync"

	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/pmm"
)

// Verbose, when true, logs every syscall a process makes. Off by default;
// cmd/nachos exposes a flag to turn it on.
var Verbose = false

func tracef(format string, args ...interface{}) {
	if Verbose {
		log.Printf(format, args...)
	}
}

// Program is the body a named executable runs when exec'd: the closest
// Go-native stand-in for interpreting a loaded MIPS binary. args carries
// the program's argv, the same way Execute's args parameter would for a
// loaded binary. A program should eventually call its UserProcess's Exit;
// if it returns without doing so, the system exits it with status 0,
// matching the convention a well-behaved program's fall-off-the-end would
// have under a real loader.
type Program func(p *UserProcess, args []string)

// System is the kernel-wide state shared by every user process: the
// physical frame pool, the machine's physical memory and file system and
// console, the pid registry, and the table of named Programs exec can
// start.
type System struct {
	Pool    *pmm.FreeFramePool
	FS      machine.FileSystem
	Console *machine.Console
	PhysMem []byte

	mu         sync.Mutex
	processes  map[int]*UserProcess
	programs   map[string]Program
	nextPid    int
	rootPid    int
	aliveCount int
	onHalt     func()
}

// NewSystem returns a system with numPhysPages pages of physical memory,
// backed by fs for storage and console for stdin/stdout.
func NewSystem(numPhysPages int, fs machine.FileSystem, console *machine.Console) *System {
	return &System{
		Pool:      pmm.NewFreeFramePool(numPhysPages),
		FS:        fs,
		Console:   console,
		PhysMem:   make([]byte, numPhysPages*int(mem.PageSize)),
		processes: make(map[int]*UserProcess),
		programs:  make(map[string]Program),
		nextPid:   1,
		onHalt:    func() {},
	}
}

// SetHaltFunc installs the callback invoked when halt is called by the
// root process, or when the last process exits. kernel.Boot wires this to
// its haltFn, which stops the host process; tests leave the default no-op
// or install a flag.
func (sys *System) SetHaltFunc(fn func()) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.onHalt = fn
}

// RegisterProgram makes name runnable by the exec syscall, which runs fn
// on a new kernel thread, and by RunProgram, which runs it on the calling
// thread.
func (sys *System) RegisterProgram(name string, fn Program) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.programs[name] = fn
}

func (sys *System) lookupProgram(name string) (Program, bool) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	fn, ok := sys.programs[name]
	return fn, ok
}

// newUserProcess allocates a pid, installs the console at fd 0/1, and
// registers the process in the system's pid map. parentPid is 0 for the
// root process.
func (sys *System) newUserProcess(parentPid int) *UserProcess {
	sys.mu.Lock()
	pid := sys.nextPid
	sys.nextPid++
	if sys.rootPid == 0 {
		sys.rootPid = pid
	}
	sys.mu.Unlock()

	p := &UserProcess{
		sys:       sys,
		pid:       pid,
		parentPid: parentPid,
		proc:      &machine.Processor{Mem: sys.PhysMem},
		fds: map[int]machine.File{
			0: sys.Console.Stdin(),
			1: sys.Console.Stdout(),
		},
		fdOffsets: map[int]int{},
		nextFd:    2,
	}

	sys.mu.Lock()
	sys.processes[pid] = p
	sys.aliveCount++
	sys.mu.Unlock()
	return p
}

// NewRootProcess creates the kernel's first process directly, bypassing
// exec, for the boot sequence to run.
func (sys *System) NewRootProcess() *UserProcess {
	return sys.newUserProcess(0)
}

func (sys *System) haltMachine() {
	sys.mu.Lock()
	fn := sys.onHalt
	sys.mu.Unlock()
	fn()
}
