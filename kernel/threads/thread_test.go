package threads

import (
	"testing"
)

// boot installs a fresh priority scheduler and main thread for a test,
// returning the main thread.
func boot(t *testing.T) *Thread {
	t.Helper()
	SetScheduler(NewPriorityScheduler())
	return NewMainThread("main")
}

func TestForkRunsBothThreads(t *testing.T) {
	boot(t)

	var order []string

	th := NewThread("worker")
	th.Fork(func() {
		order = append(order, "worker")
	})

	Join(th)
	order = append(order, "main")

	if len(order) != 2 || order[0] != "worker" || order[1] != "main" {
		t.Fatalf("unexpected interleaving: %v", order)
	}
}

func TestYieldReturnsToCaller(t *testing.T) {
	boot(t)

	ran := false
	th := NewThread("worker")
	th.Fork(func() {
		ran = true
	})

	Yield()
	if !ran {
		t.Fatalf("expected worker thread to have run after Yield")
	}
	Join(th)
}

func TestJoinOnAlreadyFinishedThread(t *testing.T) {
	boot(t)

	th := NewThread("worker")
	th.Fork(func() {})
	Join(th)

	if th.State() != StateFinished {
		t.Fatalf("expected finished state, got %v", th.State())
	}
	if status := Join(th); status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}
}

func TestExitStatusPropagatesThroughJoin(t *testing.T) {
	boot(t)

	th := NewThread("worker")
	th.Fork(func() {})

	doneThread := NewThread("setter")
	doneThread.Fork(func() {
		Current().Finish(42)
	})
	if status := Join(doneThread); status != 42 {
		t.Fatalf("expected exit status 42, got %d", status)
	}

	Join(th)
}

func TestMultipleThreadsAllComplete(t *testing.T) {
	boot(t)

	const n = 20
	threads := make([]*Thread, n)
	counter := 0
	for i := 0; i < n; i++ {
		th := NewThread("worker")
		threads[i] = th
		th.Fork(func() {
			counter++
			Yield()
		})
	}
	for _, th := range threads {
		Join(th)
	}
	if counter != n {
		t.Fatalf("expected %d completions, got %d", n, counter)
	}
}
