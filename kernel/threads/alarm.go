package threads

import "container/heap"

// Alarm lets threads suspend themselves until a given tick count has
// elapsed, and wakes them from a periodic timer tick. Waiting threads
// are kept in a min-heap ordered by wake tick, matching the original's
// Alarm.waitQueue.
type Alarm struct {
	ticks   uint64
	waiting alarmHeap
}

// NewAlarm returns an alarm with its tick counter at zero.
func NewAlarm() *Alarm {
	a := &Alarm{}
	heap.Init(&a.waiting)
	return a
}

// alarmWaiter pairs a thread with the tick at which it should wake.
type alarmWaiter struct {
	wakeTick uint64
	thread   *Thread
	index    int
}

// alarmHeap is a container/heap.Interface min-heap on wakeTick.
type alarmHeap []*alarmWaiter

func (h alarmHeap) Len() int { return len(h) }

// Less uses a strict less-than on wake tick, matching the original
// comparator exactly: two waiters scheduled for the same tick are woken
// in heap-pop order rather than guaranteed FIFO, since the comparator
// never treats them as needing a secondary ordering key.
func (h alarmHeap) Less(i, j int) bool { return h[i].wakeTick < h[j].wakeTick }

func (h alarmHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *alarmHeap) Push(x interface{}) {
	w := x.(*alarmWaiter)
	w.index = len(*h)
	*h = append(*h, w)
}

func (h *alarmHeap) Pop() interface{} {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return w
}

// WaitUntil suspends the calling thread until at least the given number
// of ticks have elapsed on this alarm. A zero or negative duration
// returns immediately after yielding once, matching the original's
// "still call yield, even if the delay is ridiculous" behavior.
func (a *Alarm) WaitUntil(ticks uint64) {
	s := DisableInterrupts()
	if ticks == 0 {
		RestoreInterrupts(s)
		Yield()
		return
	}

	wake := a.ticks + ticks
	w := &alarmWaiter{wakeTick: wake, thread: current}
	heap.Push(&a.waiting, w)
	Sleep()
	RestoreInterrupts(s)
}

// Tick advances the alarm's clock by one and wakes every thread whose
// wake tick has strictly passed, then yields the calling thread so that
// any newly-woken, higher-priority thread gets a chance to run. Tick
// stands in for the periodic timer interrupt.
func (a *Alarm) Tick() {
	s := DisableInterrupts()
	a.ticks++
	for a.waiting.Len() > 0 && a.waiting[0].wakeTick < a.ticks {
		w := heap.Pop(&a.waiting).(*alarmWaiter)
		Ready(w.thread)
	}
	RestoreInterrupts(s)
	Yield()
}

// Ticks returns the number of ticks this alarm has counted so far.
func (a *Alarm) Ticks() uint64 {
	s := DisableInterrupts()
	defer RestoreInterrupts(s)
	return a.ticks
}
