package kernel

import (
	"io"

	"nachos/kernel/machine"
	"nachos/kernel/threads"
	"nachos/kernel/userproc"
)

// Config describes how to assemble one machine instance: how much
// physical memory it has, what backs its console and file system, and
// which scheduling policy governs its threads.
type Config struct {
	// NumPhysPages sets the size of the simulated machine's physical
	// memory, in pages.
	NumPhysPages int

	// Stdin and Stdout back the console every process gets at fd 0/1.
	// Both default to a no-op stream if left nil.
	Stdin  io.Reader
	Stdout io.Writer

	// FS backs the Create/Open/Unlink syscalls. Defaults to an in-memory
	// file system if nil.
	FS machine.FileSystem

	// Scheduler selects the thread-scheduling policy. Defaults to a
	// priority scheduler if nil.
	Scheduler threads.Scheduler
}

// Kernel is one booted machine: its process/file/memory system and its
// root process, ready to run a program.
type Kernel struct {
	System *userproc.System
	Root   *userproc.UserProcess
}

// Boot assembles a Kernel from cfg: it installs the scheduler, creates
// the main thread the root process runs on, and wires the root process's
// halt syscall (and the halt on last-process exit) to this package's
// haltFn, the same function Panic calls: cmd/nachos exits with status 1
// on either, and tests that override haltFn observe (or suppress) both
// the same way.
func Boot(cfg Config) *Kernel {
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = threads.NewPriorityScheduler()
	}
	threads.SetScheduler(scheduler)
	threads.NewMainThread("root")

	stdin := cfg.Stdin
	if stdin == nil {
		stdin = noopReader{}
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	fs := cfg.FS
	if fs == nil {
		fs = machine.NewMemFS()
	}

	numPages := cfg.NumPhysPages
	if numPages <= 0 {
		numPages = 64
	}

	console := machine.NewConsole(stdin, stdout)
	sys := userproc.NewSystem(numPages, fs, console)
	sys.SetHaltFunc(func() { haltFn() })

	return &Kernel{
		System: sys,
		Root:   sys.NewRootProcess(),
	}
}

// RegisterProgram makes name runnable by the root process's RunProgram or
// by any process's exec syscall.
func (k *Kernel) RegisterProgram(name string, prog userproc.Program) {
	k.System.RegisterProgram(name, prog)
}

type noopReader struct{}

func (noopReader) Read([]byte) (int, error) { return 0, io.EOF }
