package threads

// Lock is a mutual-exclusion primitive whose wait queue transfers
// priority donation: a thread blocked on Acquire donates its effective
// priority to whichever thread currently holds the lock, so that a
// low-priority holder is sped up rather than starving a high-priority
// waiter.
type Lock struct {
	queue  WaitQueue
	holder *Thread
}

// NewLock returns an unheld lock using the kernel-wide active scheduler.
func NewLock() *Lock {
	return &Lock{queue: activeScheduler.NewWaitQueue(true)}
}

// Acquire blocks the calling thread until the lock is free, then claims
// it. Acquiring a lock the calling thread already holds is a programming
// error.
func (l *Lock) Acquire() {
	s := DisableInterrupts()
	defer RestoreInterrupts(s)
	l.acquireLocked()
}

// acquireLocked is Acquire's body, run with the interrupt gate held.
// Condition.Wait reacquires its lock through Acquire, after it has
// restored interrupts.
func (l *Lock) acquireLocked() {
	caller := current
	if l.holder == caller {
		panic("threads: lock already held by calling thread")
	}

	if l.holder == nil {
		l.queue.Acquire(caller)
		l.holder = caller
		return
	}

	l.queue.WaitForAccess(caller)
	Sleep()
	// l.holder was already set to caller by Release's call to
	// queue.NextThread, which installs the chosen waiter as the
	// queue's new holder before waking it.
}

// Release gives up the lock, waking the highest-priority waiter (if any)
// and handing the lock directly to it. Releasing a lock not held by the
// calling thread is a programming error.
func (l *Lock) Release() {
	s := DisableInterrupts()
	defer RestoreInterrupts(s)
	l.releaseLocked()
}

// releaseLocked is Release's body, used both by Release itself and by
// Condition.Wait, which must already be holding the interrupt gate when
// it releases the lock before sleeping.
func (l *Lock) releaseLocked() {
	if l.holder != current {
		panic("threads: lock released by a thread that does not hold it")
	}

	next := l.queue.NextThread()
	l.holder = next
	if next != nil {
		Ready(next)
	}
}

// IsHeldByCurrentThread reports whether the calling thread holds this
// lock.
func (l *Lock) IsHeldByCurrentThread() bool {
	s := DisableInterrupts()
	defer RestoreInterrupts(s)
	return l.holder == current
}
