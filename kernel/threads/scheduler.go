package threads

// Scheduler decides which waiting thread runs next and how priority is
// donated along chains of blocked threads. PriorityScheduler and
// LotteryScheduler are the two concrete policies; exactly one is installed
// kernel-wide via SetScheduler before any thread is created.
type Scheduler interface {
	// NewWaitQueue creates an empty queue managed by this scheduler.
	// transferDonation selects whether waiting on the queue donates
	// priority to whichever thread later becomes its holder: true for
	// locks and joins, false for the ready queue and condition
	// variables.
	NewWaitQueue(transferDonation bool) WaitQueue

	// GetPriority returns a thread's own (undonated) priority.
	GetPriority(t *Thread) int

	// GetEffectivePriority returns a thread's priority after donation
	// from everything it is effectively blocking.
	GetEffectivePriority(t *Thread) int

	// SetPriority assigns a thread's own priority, propagating the
	// change to the holder of the queue it is waiting on (and on along
	// that holder's own waitingOn chain).
	SetPriority(t *Thread, priority int)

	// IncreasePriority and DecreasePriority nudge a thread's own
	// priority by the scheduler's policy-specific step, clamped to its
	// minimum/maximum.
	IncreasePriority(t *Thread)
	DecreasePriority(t *Thread)
}

// WaitQueue orders the threads blocked on a single resource (a lock, a
// join, the ready list, a condition variable's wait set) and, when
// transferDonation is set, propagates priority from waiters to whichever
// thread currently holds the resource.
type WaitQueue interface {
	// WaitForAccess registers t as a new waiter on this queue. If the
	// queue transfers donation, t's effective priority is folded into
	// the current holder (and transitively into whatever that holder
	// is itself waiting on).
	WaitForAccess(t *Thread)

	// Acquire installs t as the resource's holder with no waiting,
	// used when a resource is first claimed uncontended.
	Acquire(t *Thread)

	// NextThread releases the current holder (recomputing its
	// priority now that this queue's donation no longer applies to
	// it), selects the next waiter per the scheduler's policy, and
	// returns it. On a queue that transfers donation the chosen waiter
	// becomes the new holder; a non-transferring queue is left with no
	// holder. Returns nil if the queue has no waiters.
	NextThread() *Thread

	// Print lists the waiters currently queued, in arrival order.
	// Condition uses it to tell whether its queue is empty.
	Print() []*Thread
}
