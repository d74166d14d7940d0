// Package threads implements the donation-aware thread scheduler, the
// alarm/timer sleep service, and the synchronization primitives (locks,
// condition variables, a rendezvous communicator) built on top of it.
//
// A Thread is backed by a real goroutine. At any moment exactly one
// Thread is logically Running; every other live thread is parked on its
// own resume channel, woken only by the scheduler handing it control.
// All scheduler bookkeeping (state, wait queues, the ready list, the
// alarm heap) is guarded by the package's interrupt gate: DisableInterrupts
// acquires the single scheduler lock and RestoreInterrupts releases it,
// the Go stand-in for the original's "every scheduler operation runs with
// interrupts disabled".
package threads

import (
	"fmt"
	"sync/atomic"
)

// State is a thread's position in its lifecycle.
type State int

// Thread lifecycle states.
const (
	StateNew State = iota
	StateReady
	StateRunning
	StateBlocked
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Thread is one schedulable unit of execution.
type Thread struct {
	id    uint64
	Name  string
	state State

	// resume is signalled by whichever thread hands this one control.
	resume chan struct{}

	// joinQueue holds threads waiting for this one to finish. It
	// always transfers donation: a joiner's priority should speed up
	// the thread it is waiting on.
	joinQueue WaitQueue

	// sched is the scheduler-policy-specific bookkeeping attached to
	// this thread (a *priorityThreadState or *lotteryThreadState),
	// created lazily the first time the active scheduler looks at this
	// thread. Kept as an opaque field, mirroring KThread.schedulingState
	// in the original sources, so that Thread need not import either
	// concrete scheduler implementation.
	sched interface{}

	// exitStatus is set by Finish and read by Join's caller.
	exitStatus int
}

var nextThreadID uint64

// current is the thread presently holding the CPU. Only ever read or
// written while schedMu is held.
var current *Thread

// readyQueue holds every thread in the StateReady state. It never
// transfers donation: waiting for the CPU does not speed up whoever
// currently holds it, matching the original's non-transferring ready
// queue.
var readyQueue WaitQueue

// activeScheduler is the scheduling policy in effect kernel-wide. It must
// be installed with SetScheduler before any thread, the main thread
// included, is created.
var activeScheduler Scheduler

// SetScheduler installs the kernel-wide scheduling policy and creates the
// ready queue under it. Call once during boot, before forking threads.
func SetScheduler(s Scheduler) {
	activeScheduler = s
	readyQueue = s.NewWaitQueue(false)
}

// NewMainThread bootstraps the very first thread: the one already
// executing the caller's goroutine. It is installed directly as Running
// with no handoff, since nothing scheduled it.
func NewMainThread(name string) *Thread {
	t := &Thread{
		id:     atomic.AddUint64(&nextThreadID, 1),
		Name:   name,
		state:  StateRunning,
		resume: make(chan struct{}),
	}
	t.joinQueue = activeScheduler.NewWaitQueue(true)
	t.joinQueue.Acquire(t)
	current = t
	return t
}

// NewThread allocates a new thread in the StateNew state. Call Fork to
// give it a body and put it on the ready queue.
func NewThread(name string) *Thread {
	t := &Thread{
		id:     atomic.AddUint64(&nextThreadID, 1),
		Name:   name,
		state:  StateNew,
		resume: make(chan struct{}),
	}
	t.joinQueue = activeScheduler.NewWaitQueue(true)
	t.joinQueue.Acquire(t)
	return t
}

// ID returns the thread's unique, never-reused identifier.
func (t *Thread) ID() uint64 { return t.id }

// State returns the thread's current lifecycle state. Safe to call
// without holding the interrupt gate; callers that need a consistent
// snapshot across multiple fields should disable interrupts themselves.
func (t *Thread) State() State { return t.state }

// ExitStatus returns the status Finish recorded for this thread. Only
// meaningful once State() == StateFinished.
func (t *Thread) ExitStatus() int { return t.exitStatus }

func (t *Thread) String() string {
	return fmt.Sprintf("thread %d (%s) [%s]", t.id, t.Name, t.state)
}

// Current returns the thread presently holding the CPU.
func Current() *Thread {
	s := DisableInterrupts()
	defer RestoreInterrupts(s)
	return current
}

// Fork starts task running on its own goroutine and places the thread on
// the ready queue. task must not itself call Fork on t before Fork
// returns.
func (t *Thread) Fork(task func()) {
	s := DisableInterrupts()
	if t.state != StateNew {
		RestoreInterrupts(s)
		panic("threads: Fork called on a thread that already ran")
	}
	t.state = StateReady
	readyQueue.WaitForAccess(t)
	idleCond.Broadcast()
	RestoreInterrupts(s)

	go func() {
		<-t.resume
		task()
		if t.State() != StateFinished {
			t.Finish(0)
		}
	}()
}

// Yield surrenders the CPU, putting the calling thread back on the ready
// queue to compete for its next turn. It returns once the thread has been
// rescheduled.
func Yield() {
	s := DisableInterrupts()
	t := current
	t.state = StateReady
	readyQueue.WaitForAccess(t)
	blockCurrent()
	RestoreInterrupts(s)
}

// Sleep blocks the calling thread without putting it back on any ready
// or wait queue; the caller is responsible for having already registered
// it somewhere (a lock's queue, an alarm's heap, a condition's wait set)
// and for eventually calling Ready on it. Must be called with interrupts
// already disabled by the caller, and returns with interrupts still
// disabled.
func Sleep() {
	current.state = StateBlocked
	blockCurrent()
}

// Ready moves a blocked thread back onto the ready queue. Must be called
// with interrupts disabled.
func Ready(t *Thread) {
	if t.state == StateFinished {
		return
	}
	t.state = StateReady
	readyQueue.WaitForAccess(t)
	idleCond.Broadcast()
}

// Finish terminates the calling thread with the given exit status, waking
// any threads joined on it. It returns to its caller only after handing
// the CPU to the next ready thread; t is never resumed after that.
func (t *Thread) Finish(status int) {
	s := DisableInterrupts()
	if current != t {
		RestoreInterrupts(s)
		panic("threads: Finish called on a thread other than current")
	}
	t.exitStatus = status
	t.state = StateFinished
	for {
		waiter := t.joinQueue.NextThread()
		if waiter == nil {
			break
		}
		Ready(waiter)
	}

	next := pickNextLocked()
	current = next
	next.state = StateRunning
	resume := next.resume
	schedMu.Unlock()
	resume <- struct{}{}
	// Finish returns to its caller here; the handoff above already
	// granted the CPU to next, and nothing will ever resume t again.
}

// Join blocks the calling thread until t finishes, then returns t's exit
// status. Joining a thread that has already finished returns immediately.
func Join(t *Thread) int {
	s := DisableInterrupts()
	if t.state == StateFinished {
		RestoreInterrupts(s)
		return t.exitStatus
	}
	caller := current
	t.joinQueue.WaitForAccess(caller)
	caller.state = StateBlocked
	blockCurrent()
	RestoreInterrupts(s)
	return t.exitStatus
}

// blockCurrent hands the CPU to the next ready thread and parks the
// caller until it is rescheduled. Must be called with schedMu held and
// current.state already updated to its new (non-running) state; returns
// with schedMu held again once the caller has been resumed.
func blockCurrent() {
	self := current
	next := pickNextLocked()
	if next == self {
		self.state = StateRunning
		return
	}
	current = next
	next.state = StateRunning
	resume := next.resume
	schedMu.Unlock()
	resume <- struct{}{}
	<-self.resume
	schedMu.Lock()
}

// pickNextLocked selects the next thread to run, blocking on idleCond if
// the ready queue is empty until some other path makes a thread ready.
// Must be called with schedMu held.
func pickNextLocked() *Thread {
	for {
		next := readyQueue.NextThread()
		if next != nil {
			return next
		}
		idleCond.Wait()
	}
}
