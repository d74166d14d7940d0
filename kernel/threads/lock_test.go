package threads

import "testing"

func TestLockMutualExclusion(t *testing.T) {
	SetScheduler(NewPriorityScheduler())
	NewMainThread("main")

	lock := NewLock()
	counter := 0
	const n = 8
	threads := make([]*Thread, n)
	for i := 0; i < n; i++ {
		th := NewThread("worker")
		threads[i] = th
		th.Fork(func() {
			lock.Acquire()
			local := counter
			Yield() // give another thread a chance to interleave if exclusion were broken
			counter = local + 1
			lock.Release()
		})
	}
	for _, th := range threads {
		Join(th)
	}
	if counter != n {
		t.Fatalf("expected counter %d, got %d (mutual exclusion violated)", n, counter)
	}
}

func TestLockPanicsOnDoubleAcquire(t *testing.T) {
	SetScheduler(NewPriorityScheduler())
	NewMainThread("main")

	lock := NewLock()
	lock.Acquire()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on re-entrant Acquire")
		}
	}()
	lock.Acquire()
}

func TestLockPanicsOnReleaseByNonHolder(t *testing.T) {
	SetScheduler(NewPriorityScheduler())
	main := NewMainThread("main")

	lock := NewLock()
	other := NewThread("other")
	other.Fork(func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic releasing a lock not held by the calling thread")
			}
		}()
		lock.Release()
	})
	Join(other)
	_ = main
}
