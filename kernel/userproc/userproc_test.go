package userproc

import (
	"bytes"
	"strings"
	"testing"

	"nachos/kernel/machine"
	"nachos/kernel/mem"
	"nachos/kernel/mem/vmm"
	"nachos/kernel/threads"
)

// newScratchAddressSpace gives a process enough mapped, contiguous pages
// to exercise syscalls directly in tests, standing in for the address
// space Execute would normally build from a loaded executable.
func newScratchAddressSpace(sys *System) *vmm.AddressSpace {
	as := vmm.NewAddressSpace(4, sys.Pool)
	for vpn := uint32(0); vpn < 4; vpn++ {
		as.AllocatePage(vpn)
	}
	return as
}

func newTestSystem(numPhysPages int) (*System, *bytes.Buffer) {
	threads.SetScheduler(threads.NewPriorityScheduler())
	threads.NewMainThread("main")

	var out bytes.Buffer
	console := machine.NewConsole(strings.NewReader(""), &out)
	fs := machine.NewMemFS()
	sys := NewSystem(numPhysPages, fs, console)
	return sys, &out
}

func TestExecuteLoadsSectionsAndSetsUpArgv(t *testing.T) {
	sys, _ := newTestSystem(16)
	root := sys.NewRootProcess()

	loader := machine.NewMemLoader(0)
	loader.AddSection(0, true, bytes.Repeat([]byte{0x01}, int(mem.PageSize)))

	if ok := root.Execute(loader, []string{"prog", "arg1"}); !ok {
		t.Fatalf("expected Execute to succeed")
	}
	if root.proc.PC != 0 || root.proc.A0 != 2 {
		t.Fatalf("expected PC=0, argc=2; got PC=%d, argc=%d", root.proc.PC, root.proc.A0)
	}

	ptrBuf := make([]byte, 4)
	if n := root.as.ReadVirtualMemory(sys.PhysMem, root.proc.A1, ptrBuf, 0, 4); n != 4 {
		t.Fatalf("expected to read the first argv pointer, read %d bytes", n)
	}
	argPtr := uint32(ptrBuf[0]) | uint32(ptrBuf[1])<<8 | uint32(ptrBuf[2])<<16 | uint32(ptrBuf[3])<<24
	got, ok := root.readVirtualMemoryString(argPtr, maxArgLength)
	if !ok || got != "prog" {
		t.Fatalf("expected first argv string %q, got %q (ok=%v)", "prog", got, ok)
	}
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	sys, _ := newTestSystem(16)
	root := sys.NewRootProcess()
	root.as = newScratchAddressSpace(sys)

	nameVaddr := uint32(0)
	writeString(t, root, nameVaddr, "greeting.txt")

	fd := root.Create(nameVaddr)
	if fd < 2 {
		t.Fatalf("expected Create to return a descriptor >= 2, got %d", fd)
	}

	payload := "hello file"
	dataVaddr := uint32(64)
	writeString(t, root, dataVaddr, payload)

	if n := root.Write(int(fd), dataVaddr, int32(len(payload))); n != int32(len(payload)) {
		t.Fatalf("expected to write %d bytes, wrote %d", len(payload), n)
	}
	if got := root.Close(int(fd)); got != 0 {
		t.Fatalf("expected Close to succeed, got %d", got)
	}

	fd2 := root.Open(nameVaddr)
	if fd2 < 2 {
		t.Fatalf("expected Open to return a descriptor, got %d", fd2)
	}
	readVaddr := uint32(512)
	if n := root.Read(int(fd2), readVaddr, int32(len(payload))); n != int32(len(payload)) {
		t.Fatalf("expected to read %d bytes, read %d", len(payload), n)
	}
	got, ok := root.readVirtualMemoryString(readVaddr, len(payload)+1)
	if !ok || got != payload {
		t.Fatalf("expected to read back %q, got %q (ok=%v)", payload, got, ok)
	}
}

func TestExecJoinReturnsChildExitStatus(t *testing.T) {
	sys, _ := newTestSystem(16)
	sys.RegisterProgram("writer", func(p *UserProcess, args []string) {
		nameVaddr := uint32(0)
		writeString(t, p, nameVaddr, "out.txt")
		fd := p.Create(nameVaddr)
		if fd < 0 {
			p.Exit(1)
			return
		}
		p.Close(int(fd))
		p.Exit(0)
	})

	root := sys.NewRootProcess()
	root.as = newScratchAddressSpace(sys)

	nameVaddr := uint32(0)
	writeString(t, root, nameVaddr, "writer")

	argvVaddr := uint32(256)
	argStrVaddr := uint32(320)
	writeString(t, root, argStrVaddr, "writer")
	ptrBuf := make([]byte, 4)
	putUint32LE(ptrBuf, argStrVaddr)
	root.as.WriteVirtualMemory(sys.PhysMem, argvVaddr, ptrBuf, 0, 4)

	childPid := root.Exec(nameVaddr, 1, argvVaddr)
	if childPid < 0 {
		t.Fatalf("expected Exec to succeed, got %d", childPid)
	}

	statusVaddr := uint32(600)
	result := root.Join(int(childPid), statusVaddr)
	if result != 1 {
		t.Fatalf("expected Join to report a clean exit, got %d", result)
	}

	statusBuf := make([]byte, 4)
	root.as.ReadVirtualMemory(sys.PhysMem, statusVaddr, statusBuf, 0, 4)
	if got := int32(uint32(statusBuf[0]) | uint32(statusBuf[1])<<8 | uint32(statusBuf[2])<<16 | uint32(statusBuf[3])<<24); got != 0 {
		t.Fatalf("expected status 0 written back, got %d", got)
	}
}

func TestJoinRejectsUnknownPid(t *testing.T) {
	sys, _ := newTestSystem(16)
	root := sys.NewRootProcess()
	root.as = newScratchAddressSpace(sys)
	if got := root.Join(999, 0); got != -1 {
		t.Fatalf("expected Join on an unknown pid to return -1, got %d", got)
	}
}

func TestHaltRejectsNonRootProcess(t *testing.T) {
	sys, _ := newTestSystem(16)
	sys.NewRootProcess()
	child := sys.newUserProcess(1)
	if got := child.Halt(); got != -1 {
		t.Fatalf("expected a non-root halt to be rejected, got %d", got)
	}
}

func TestHandlePageFaultAllocatesAndRewindsPC(t *testing.T) {
	sys, _ := newTestSystem(16)
	root := sys.NewRootProcess()
	root.as = vmm.NewAddressSpace(4, sys.Pool)
	root.as.AllocatePage(0) // leave VPN 2 unmapped so the fault below has work to do

	root.proc.PC = 100
	root.proc.NextPC = 104
	root.proc.BadVAddr = uint32(mem.PageSize) * 2

	if ok := root.HandlePageFault(); !ok {
		t.Fatalf("expected HandlePageFault to succeed")
	}
	if root.proc.PC != 100 || root.proc.NextPC != 104 {
		t.Fatalf("expected PC/NextPC unchanged after a resolved fault, got PC=%d NextPC=%d", root.proc.PC, root.proc.NextPC)
	}
	if e, ok := root.as.Entry(2); !ok || !e.Valid {
		t.Fatalf("expected VPN 2 to be mapped after the fault")
	}
}

func writeString(t *testing.T, p *UserProcess, vaddr uint32, s string) {
	t.Helper()
	buf := append([]byte(s), 0)
	if n := p.as.WriteVirtualMemory(p.sys.PhysMem, vaddr, buf, 0, len(buf)); n != len(buf) {
		t.Fatalf("failed to write string %q at %d", s, vaddr)
	}
}

func putUint32LE(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}
