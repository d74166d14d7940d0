package threads

// Priority bounds for PriorityScheduler, matching the original's
// priorityMinimum/priorityDefault/priorityMaximum.
const (
	PriorityMinimum = 0
	PriorityDefault = 1
	PriorityMaximum = 7
)

// PriorityScheduler selects the ready thread with the highest effective
// priority, breaking ties in FIFO (longest-waiting-first) order, and
// donates priority by maximum: a thread's effective priority is the
// larger of its own priority and the effective priority of anything
// transitively waiting on a resource it holds.
type PriorityScheduler struct{}

// NewPriorityScheduler returns a scheduler using priority-with-donation.
func NewPriorityScheduler() *PriorityScheduler { return &PriorityScheduler{} }

func (s *PriorityScheduler) state(t *Thread) *priorityThreadState {
	if t.sched == nil {
		t.sched = &priorityThreadState{thread: t, priority: PriorityDefault}
	}
	ps, ok := t.sched.(*priorityThreadState)
	if !ok {
		panic("threads: thread already bound to a different scheduler")
	}
	return ps
}

// NewWaitQueue implements Scheduler.
func (s *PriorityScheduler) NewWaitQueue(transferDonation bool) WaitQueue {
	return &priorityQueue{scheduler: s, transferDonation: transferDonation}
}

// GetPriority implements Scheduler.
func (s *PriorityScheduler) GetPriority(t *Thread) int { return s.state(t).priority }

// GetEffectivePriority implements Scheduler.
func (s *PriorityScheduler) GetEffectivePriority(t *Thread) int {
	return s.state(t).getEffectivePriority()
}

// SetPriority implements Scheduler.
func (s *PriorityScheduler) SetPriority(t *Thread, priority int) {
	if priority < PriorityMinimum || priority > PriorityMaximum {
		panic("threads: priority out of range")
	}
	s.state(t).setPriority(priority)
}

// IncreasePriority implements Scheduler.
func (s *PriorityScheduler) IncreasePriority(t *Thread) {
	ps := s.state(t)
	if ps.priority < PriorityMaximum {
		ps.setPriority(ps.priority + 1)
	}
}

// DecreasePriority implements Scheduler.
func (s *PriorityScheduler) DecreasePriority(t *Thread) {
	ps := s.state(t)
	if ps.priority > PriorityMinimum {
		ps.setPriority(ps.priority - 1)
	}
}

// priorityThreadState is the per-thread bookkeeping the scheduler keeps
// in Thread.sched: own priority, the queues this thread holds (donors
// flow in from these), and the queue it is itself waiting on (donation
// flows out through this one, if any).
type priorityThreadState struct {
	thread   *Thread
	priority int

	// effective caches the last computed effective priority; valid
	// is false whenever a donor's contribution may have changed and a
	// recompute is needed.
	effective int
	valid     bool

	// held lists the queues this thread currently owns as resource
	// holder; waiters on these queues may donate up to this thread.
	held []*priorityQueue

	// waitingOn is the single queue this thread is blocked on, or nil.
	waitingOn *priorityQueue
}

func (ps *priorityThreadState) getEffectivePriority() int {
	if !ps.valid {
		ps.recompute()
	}
	return ps.effective
}

// recompute derives the effective priority as the max of the thread's own
// priority and the effective priority of every waiter across every queue
// this thread holds (but only for queues that transfer donation).
func (ps *priorityThreadState) recompute() {
	best := ps.priority
	for _, q := range ps.held {
		if !q.transferDonation {
			continue
		}
		for _, w := range q.waiters {
			if wp := q.scheduler.state(w).getEffectivePriority(); wp > best {
				best = wp
			}
		}
	}
	ps.effective = best
	ps.valid = true
}

// invalidate marks this thread's cached effective priority stale and
// propagates the invalidation to whatever it is waiting on, since that
// thread's own effective priority may now need to change too.
func (ps *priorityThreadState) invalidate(visiting map[*priorityThreadState]bool) {
	if visiting == nil {
		visiting = map[*priorityThreadState]bool{}
	}
	if visiting[ps] {
		return
	}
	visiting[ps] = true
	ps.valid = false
	if ps.waitingOn != nil && ps.waitingOn.holder != nil {
		holderState := ps.waitingOn.scheduler.state(ps.waitingOn.holder)
		holderState.invalidate(visiting)
	}
}

func (ps *priorityThreadState) setPriority(priority int) {
	if ps.priority == priority {
		return
	}
	ps.priority = priority
	ps.invalidate(nil)
}

// priorityQueue is a WaitQueue under the priority-donation policy.
type priorityQueue struct {
	scheduler        *PriorityScheduler
	transferDonation bool
	waiters          []*Thread
	holder           *Thread
}

// WaitForAccess implements WaitQueue.
func (q *priorityQueue) WaitForAccess(t *Thread) {
	q.waiters = append(q.waiters, t)
	ts := q.scheduler.state(t)
	ts.waitingOn = q
	if q.transferDonation && q.holder != nil {
		q.scheduler.state(q.holder).invalidate(nil)
	}
}

// Acquire implements WaitQueue.
func (q *priorityQueue) Acquire(t *Thread) {
	ts := q.scheduler.state(t)
	ts.held = append(ts.held, q)
	q.holder = t
}

// NextThread implements WaitQueue.
func (q *priorityQueue) NextThread() *Thread {
	if q.holder != nil {
		q.releaseHolder()
	}
	if len(q.waiters) == 0 {
		return nil
	}

	best := 0
	bestPriority := q.scheduler.state(q.waiters[0]).getEffectivePriority()
	for i := 1; i < len(q.waiters); i++ {
		p := q.scheduler.state(q.waiters[i]).getEffectivePriority()
		if p > bestPriority {
			best, bestPriority = i, p
		}
	}

	next := q.waiters[best]
	q.waiters = append(q.waiters[:best], q.waiters[best+1:]...)
	q.scheduler.state(next).waitingOn = nil
	if q.transferDonation {
		q.Acquire(next)
	}
	return next
}

// releaseHolder drops the current holder, recomputing its effective
// priority now that this queue's donors no longer apply to it.
func (q *priorityQueue) releaseHolder() {
	ts := q.scheduler.state(q.holder)
	for i, h := range ts.held {
		if h == q {
			ts.held = append(ts.held[:i], ts.held[i+1:]...)
			break
		}
	}
	q.holder = nil
	ts.invalidate(nil)
}

// Print implements WaitQueue, returning waiters in arrival order for
// inspection.
func (q *priorityQueue) Print() []*Thread {
	out := make([]*Thread, len(q.waiters))
	copy(out, q.waiters)
	return out
}
