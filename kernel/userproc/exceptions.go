package userproc

import (
	"nachos/kernel/machine"
	"nachos/kernel/mem/vmm"
)

// HandlePageFault services a TLB/page-miss trap: it resolves the faulting
// address's virtual page, allocates a frame for it, and rewinds the
// register file so the faulting instruction re-executes once the
// handler returns. It reports false when the faulting address falls
// outside the process's address space entirely, a fault no amount of
// allocation can fix.
func (p *UserProcess) HandlePageFault() bool {
	vpn := uint32(vmm.PageFromAddress(uintptr(p.proc.BadVAddr)))
	if !p.as.AllocatePage(vpn) {
		return false
	}
	p.proc.NextPC = p.proc.PC
	p.proc.AdvancePC()
	return true
}

// HandleException dispatches a trap by cause: a page fault tries to
// resolve itself by allocating the missing page, and exits the process
// with the exception code as status only if that fails. Every other
// exception is fatal, since the causes underneath it (bad addresses,
// illegal instructions, arithmetic overflow) have no recovery short of
// the process simply not continuing.
func (p *UserProcess) HandleException(cause int) {
	if cause == machine.ExceptionPageFault && p.HandlePageFault() {
		return
	}
	p.doExit(cause)
}
