package userproc

import (
	"encoding/binary"

	"nachos/kernel/mem/vmm"
	"nachos/kernel/threads"
)

// The ten syscall numbers a process's A0..A3 and V0 registers would carry
// under a real trap handler. No instruction-dispatch loop exists to wire
// these constants to a trap in this tree; they document the convention a
// future one would use, and the methods below are the handlers it would
// call.
const (
	SyscallHalt   = 0
	SyscallExit   = 1
	SyscallExec   = 2
	SyscallJoin   = 3
	SyscallCreate = 4
	SyscallOpen   = 5
	SyscallRead   = 6
	SyscallWrite  = 7
	SyscallClose  = 8
	SyscallUnlink = 9
)

// Halt shuts the machine down. Only the root process may call it;
// anyone else's attempt is rejected rather than honored, since a
// misbehaving child halting the whole machine out from under its
// siblings would be far more surprising than a syscall error.
func (p *UserProcess) Halt() int32 {
	p.sys.mu.Lock()
	isRoot := p.pid == p.sys.rootPid
	p.sys.mu.Unlock()
	if !isRoot {
		return -1
	}
	tracef("process %d: halt", p.pid)
	p.sys.haltMachine()
	return 0
}

// Exit terminates the calling process with status, releasing its
// resources and waking any parent blocked in Join on it.
func (p *UserProcess) Exit(status int32) {
	p.doExit(int(status))
}

// Exec starts a new process running the program registered under the
// name read from nameVaddr, with argc arguments whose pointers are read
// from the table at argvVaddr. On success the child's pid is recorded
// under this process and returned; -1 reports a bad name, a bad
// argument pointer, or too many arguments.
func (p *UserProcess) Exec(nameVaddr uint32, argc int32, argvVaddr uint32) int32 {
	if argc < 0 || int(argc) > maxArgCount {
		return -1
	}
	name, ok := p.readVirtualMemoryString(nameVaddr, maxNameLength)
	if !ok {
		return -1
	}

	args := make([]string, argc)
	for i := int32(0); i < argc; i++ {
		ptrBuf := make([]byte, 4)
		if n := p.as.ReadVirtualMemory(p.sys.PhysMem, argvVaddr+uint32(i)*4, ptrBuf, 0, 4); n != 4 {
			return -1
		}
		argPtr := binary.LittleEndian.Uint32(ptrBuf)
		arg, ok := p.readVirtualMemoryString(argPtr, maxArgLength)
		if !ok {
			return -1
		}
		args[i] = arg
	}

	prog, ok := p.sys.lookupProgram(name)
	if !ok {
		tracef("process %d: exec %q: no such program", p.pid, name)
		return -1
	}

	child := p.sys.newUserProcess(p.pid)
	child.as = vmm.NewAddressSpace(defaultUserPages, p.sys.Pool)
	child.as.AllocatePage(0) // one demand-zero page so a program's buffers have somewhere to live

	if p.children == nil {
		p.children = make(map[int]*UserProcess)
	}
	p.children[child.pid] = child

	child.thread = threads.NewThread(name)
	tracef("process %d: exec %q -> pid %d", p.pid, name, child.pid)
	child.thread.Fork(func() {
		prog(child, args)
		child.doExit(0)
	})
	return int32(child.pid)
}

// Join blocks until childPid finishes, writes its exit status to
// statusVaddr, and returns 1 if the child exited cleanly (status 0) or 0
// otherwise. -1 reports that childPid is not a live or known child of
// this process.
func (p *UserProcess) Join(childPid int, statusVaddr uint32) int32 {
	child, ok := p.children[childPid]
	if !ok {
		return -1
	}

	threads.Join(child.thread)

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(int32(child.exitStatus)))
	p.as.WriteVirtualMemory(p.sys.PhysMem, statusVaddr, buf, 0, 4)

	delete(p.children, childPid)
	if child.exitStatus == 0 {
		return 1
	}
	return 0
}

// Create opens the file named at nameVaddr, creating it if it does not
// exist, and installs it at a new descriptor.
func (p *UserProcess) Create(nameVaddr uint32) int32 {
	return p.openFile(nameVaddr, true)
}

// Open opens the file named at nameVaddr, failing if it does not exist.
func (p *UserProcess) Open(nameVaddr uint32) int32 {
	return p.openFile(nameVaddr, false)
}

func (p *UserProcess) openFile(nameVaddr uint32, createIfMissing bool) int32 {
	name, ok := p.readVirtualMemoryString(nameVaddr, maxNameLength)
	if !ok {
		return -1
	}
	f, ok := p.sys.FS.Open(name, createIfMissing)
	if !ok {
		return -1
	}
	fd := p.allocFd()
	if fd < 0 {
		f.Close()
		return -1
	}
	p.fds[fd] = f
	p.fdOffsets[fd] = 0
	return int32(fd)
}

// Read reads up to size bytes from fd into the process's memory at
// bufVaddr, advancing the descriptor's sequential offset.
func (p *UserProcess) Read(fd int, bufVaddr uint32, size int32) int32 {
	if size < 0 {
		return -1
	}
	f, ok := p.fds[fd]
	if !ok {
		return -1
	}

	buf := make([]byte, size)
	n, err := f.Read(buf, p.fdOffsets[fd], int(size))
	if err != nil {
		return -1
	}
	if n > 0 && p.as.WriteVirtualMemory(p.sys.PhysMem, bufVaddr, buf, 0, n) != n {
		return -1
	}
	p.fdOffsets[fd] += n
	return int32(n)
}

// Write writes size bytes from the process's memory at bufVaddr to fd,
// advancing the descriptor's sequential offset. A short underlying write
// is reported as an error rather than returned as a partial count.
func (p *UserProcess) Write(fd int, bufVaddr uint32, size int32) int32 {
	if size < 0 {
		return -1
	}
	f, ok := p.fds[fd]
	if !ok {
		return -1
	}

	buf := make([]byte, size)
	if n := p.as.ReadVirtualMemory(p.sys.PhysMem, bufVaddr, buf, 0, int(size)); n != int(size) {
		return -1
	}
	n, err := f.Write(buf, p.fdOffsets[fd], int(size))
	if err != nil || n != int(size) {
		return -1
	}
	p.fdOffsets[fd] += n
	return int32(size)
}

// Close closes fd and removes it from this process's descriptor table.
func (p *UserProcess) Close(fd int) int32 {
	f, ok := p.fds[fd]
	if !ok {
		return -1
	}
	err := f.Close()
	delete(p.fds, fd)
	delete(p.fdOffsets, fd)
	if err != nil {
		return -1
	}
	return 0
}

// Unlink removes the file named at nameVaddr from the file system.
func (p *UserProcess) Unlink(nameVaddr uint32) int32 {
	name, ok := p.readVirtualMemoryString(nameVaddr, maxNameLength)
	if !ok {
		return -1
	}
	if !p.sys.FS.Remove(name) {
		return -1
	}
	return 0
}
