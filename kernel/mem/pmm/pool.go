package pmm

import "nachos/kernel/threads"

// FreeFramePool is the kernel-wide list of physical frames not currently
// owned by any process's address space. It is guarded by its own lock
// rather than the scheduler's interrupt gate, since frame allocation and
// release happen from user-process code running as ordinary kernel
// threads, not from scheduler-internal paths.
type FreeFramePool struct {
	lock      *threads.Lock
	available *threads.Condition
	free      []Frame
}

// NewFreeFramePool returns a pool seeded with frames 0..numFrames-1.
func NewFreeFramePool(numFrames int) *FreeFramePool {
	lock := threads.NewLock()
	p := &FreeFramePool{
		lock:      lock,
		available: threads.NewCondition(lock),
		free:      make([]Frame, numFrames),
	}
	for i := range p.free {
		p.free[i] = Frame(i)
	}
	return p
}

// Allocate removes and returns one frame from the pool. If the pool is
// currently empty, the calling thread blocks on available until another
// thread releases a frame; this is the pool's starvation-waiter list,
// implemented as a condition variable rather than an explicit slice of
// parked threads. Each Release wakes one waiter, which re-checks the free
// list itself before taking a frame.
func (p *FreeFramePool) Allocate() Frame {
	p.lock.Acquire()
	defer p.lock.Release()

	for len(p.free) == 0 {
		p.available.Wait()
	}
	n := len(p.free) - 1
	f := p.free[n]
	p.free = p.free[:n]
	return f
}

// Release returns f to the pool and wakes one frame-starved waiter, if
// any. Releasing a frame that is already free is a programming error
// left undetected here, matching the original's trust in its own
// bookkeeping (the address space never releases a frame it doesn't own).
func (p *FreeFramePool) Release(f Frame) {
	p.lock.Acquire()
	defer p.lock.Release()

	p.free = append(p.free, f)
	p.available.Wake()
}

// NumFree reports how many frames are currently unowned. Intended for
// diagnostics and tests, not for deciding whether to call Allocate (which
// blocks on its own).
func (p *FreeFramePool) NumFree() int {
	p.lock.Acquire()
	defer p.lock.Release()
	return len(p.free)
}
