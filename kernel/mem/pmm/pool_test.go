package pmm

import (
	"testing"

	"nachos/kernel/threads"
)

func TestFreeFramePoolAllocateRelease(t *testing.T) {
	threads.SetScheduler(threads.NewPriorityScheduler())
	threads.NewMainThread("main")

	pool := NewFreeFramePool(4)
	if got := pool.NumFree(); got != 4 {
		t.Fatalf("expected 4 free frames, got %d", got)
	}

	seen := map[Frame]bool{}
	for i := 0; i < 4; i++ {
		f := pool.Allocate()
		if seen[f] {
			t.Fatalf("frame %d allocated twice", f)
		}
		seen[f] = true
	}
	if got := pool.NumFree(); got != 0 {
		t.Fatalf("expected pool to be exhausted, got %d free", got)
	}

	pool.Release(Frame(2))
	if got := pool.NumFree(); got != 1 {
		t.Fatalf("expected 1 free frame after release, got %d", got)
	}
	if f := pool.Allocate(); f != Frame(2) {
		t.Fatalf("expected to reallocate frame 2, got %d", f)
	}
}

// TestFreeFramePoolBlocksUntilFramesAvailable exercises the starvation
// path: a thread that calls Allocate on an empty pool blocks until
// another thread releases a frame.
func TestFreeFramePoolBlocksUntilFramesAvailable(t *testing.T) {
	threads.SetScheduler(threads.NewPriorityScheduler())
	threads.NewMainThread("main")

	pool := NewFreeFramePool(1)
	first := pool.Allocate()
	if got := pool.NumFree(); got != 0 {
		t.Fatalf("expected pool exhausted, got %d free", got)
	}

	var second Frame
	waiter := threads.NewThread("waiter")
	waiter.Fork(func() {
		second = pool.Allocate()
	})
	threads.Yield() // let the waiter block on Allocate

	pool.Release(first)
	threads.Join(waiter)

	if second != first {
		t.Fatalf("expected waiter to receive the released frame %d, got %d", first, second)
	}
}
