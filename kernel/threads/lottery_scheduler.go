package threads

import "math/rand"

// Ticket bounds for LotteryScheduler, matching the original's
// priorityMinimum/priorityDefault. IncreasePriority stops at the largest
// 32-bit signed value; SetPriority checks only the minimum.
const (
	TicketMinimum = 1
	TicketDefault = 1
)

// LotteryScheduler picks the next thread to run by a weighted random
// draw over effective ticket counts, and donates priority additively: a
// thread's effective tickets equal its own tickets plus the effective
// tickets of everything waiting on a resource it holds.
type LotteryScheduler struct {
	rng *rand.Rand
}

// NewLotteryScheduler returns a scheduler using ticket-based lottery
// scheduling with additive donation. r drives the weighted draw; pass a
// seeded *rand.Rand for reproducible tests.
func NewLotteryScheduler(r *rand.Rand) *LotteryScheduler {
	return &LotteryScheduler{rng: r}
}

func (s *LotteryScheduler) state(t *Thread) *lotteryThreadState {
	if t.sched == nil {
		t.sched = &lotteryThreadState{thread: t, tickets: TicketDefault, effective: TicketDefault}
	}
	ls, ok := t.sched.(*lotteryThreadState)
	if !ok {
		panic("threads: thread already bound to a different scheduler")
	}
	return ls
}

// NewWaitQueue implements Scheduler.
func (s *LotteryScheduler) NewWaitQueue(transferDonation bool) WaitQueue {
	return &lotteryQueue{scheduler: s, transferDonation: transferDonation}
}

// GetPriority implements Scheduler.
func (s *LotteryScheduler) GetPriority(t *Thread) int { return s.state(t).tickets }

// GetEffectivePriority implements Scheduler.
func (s *LotteryScheduler) GetEffectivePriority(t *Thread) int { return s.state(t).effective }

// SetPriority implements Scheduler.
func (s *LotteryScheduler) SetPriority(t *Thread, tickets int) {
	if tickets < TicketMinimum {
		panic("threads: ticket count out of range")
	}
	ls := s.state(t)
	delta := tickets - ls.tickets
	ls.tickets = tickets
	ls.applyDelta(delta, nil)
}

// IncreasePriority implements Scheduler.
func (s *LotteryScheduler) IncreasePriority(t *Thread) {
	ls := s.state(t)
	if ls.tickets < 1<<31-1 {
		ls.tickets++
		ls.applyDelta(1, nil)
	}
}

// DecreasePriority implements Scheduler.
func (s *LotteryScheduler) DecreasePriority(t *Thread) {
	ls := s.state(t)
	if ls.tickets > TicketMinimum {
		ls.tickets--
		ls.applyDelta(-1, nil)
	}
}

// lotteryThreadState is the per-thread bookkeeping for lottery
// scheduling. Unlike the priority policy's recompute-from-scratch model,
// donation here is tracked as a running total adjusted by delta whenever
// a contributor's own effective tickets change; this mirrors the
// original's setEffectivePriority(delta), whose name is a misnomer for
// what is really an incremental adjustment, not an absolute set.
type lotteryThreadState struct {
	thread    *Thread
	tickets   int
	effective int

	// held lists the queues this thread currently owns.
	held []*lotteryQueue

	// waitingOn is the single queue this thread is blocked on, or nil.
	waitingOn *lotteryQueue
}

// applyDelta adjusts this thread's effective tickets by delta and, if it
// is itself waiting on a transferring queue, propagates the same delta
// up to that queue's holder. visiting guards against the mutual-join
// cycle where two threads are each (transitively) waiting on the other:
// once a thread is seen twice on one propagation path the edge closing
// the cycle is dropped rather than double-counted.
func (ls *lotteryThreadState) applyDelta(delta int, visiting map[*lotteryThreadState]bool) {
	if delta == 0 {
		return
	}
	if visiting == nil {
		visiting = map[*lotteryThreadState]bool{}
	}
	if visiting[ls] {
		return
	}
	visiting[ls] = true

	ls.effective += delta
	if ls.waitingOn != nil && ls.waitingOn.transferDonation && ls.waitingOn.holder != nil {
		holderState := ls.waitingOn.scheduler.state(ls.waitingOn.holder)
		holderState.applyDelta(delta, visiting)
	}
}

// lotteryQueue is a WaitQueue under the lottery-donation policy.
type lotteryQueue struct {
	scheduler        *LotteryScheduler
	transferDonation bool
	waiters          []*Thread
	holder           *Thread
}

// WaitForAccess implements WaitQueue.
func (q *lotteryQueue) WaitForAccess(t *Thread) {
	q.waiters = append(q.waiters, t)
	ts := q.scheduler.state(t)
	ts.waitingOn = q
	if q.transferDonation && q.holder != nil {
		q.scheduler.state(q.holder).applyDelta(ts.effective, nil)
	}
}

// Acquire implements WaitQueue.
func (q *lotteryQueue) Acquire(t *Thread) {
	ts := q.scheduler.state(t)
	ts.held = append(ts.held, q)
	q.holder = t
}

// waitersTotal returns the sum of the effective ticket counts of every
// thread currently waiting on this queue.
func (q *lotteryQueue) waitersTotal() int {
	total := 0
	for _, w := range q.waiters {
		total += q.scheduler.state(w).effective
	}
	return total
}

// NextThread implements WaitQueue.
func (q *lotteryQueue) NextThread() *Thread {
	if q.holder != nil {
		// The old holder is losing every donation currently flowing in
		// from this queue's waiters (including whichever of them is
		// about to become the new holder, which starts fresh below).
		if q.transferDonation {
			if total := q.waitersTotal(); total != 0 {
				q.scheduler.state(q.holder).applyDelta(-total, nil)
			}
		}
		q.releaseHolder()
	}
	if len(q.waiters) == 0 {
		return nil
	}

	total := q.waitersTotal()
	draw := 0
	if total > 0 {
		draw = q.scheduler.rng.Intn(total)
	}
	running := 0
	chosen := len(q.waiters) - 1
	for i, w := range q.waiters {
		running += q.scheduler.state(w).effective
		if draw < running {
			chosen = i
			break
		}
	}

	next := q.waiters[chosen]
	q.waiters = append(q.waiters[:chosen], q.waiters[chosen+1:]...)
	q.scheduler.state(next).waitingOn = nil
	if q.transferDonation {
		q.Acquire(next)
		// Whoever is still waiting now donates to the new holder.
		if remaining := q.waitersTotal(); remaining != 0 {
			q.scheduler.state(next).applyDelta(remaining, nil)
		}
	}
	return next
}

// releaseHolder clears the current holder and drops this queue from its
// held-queue list. Effective ticket accounting for the departing donation
// is handled by the caller, which knows whether this queue transfers
// donation at all.
func (q *lotteryQueue) releaseHolder() {
	ts := q.scheduler.state(q.holder)
	for i, h := range ts.held {
		if h == q {
			ts.held = append(ts.held[:i], ts.held[i+1:]...)
			break
		}
	}
	q.holder = nil
}

// Print implements WaitQueue, returning waiters in arrival order for
// inspection.
func (q *lotteryQueue) Print() []*Thread {
	out := make([]*Thread, len(q.waiters))
	copy(out, q.waiters)
	return out
}
