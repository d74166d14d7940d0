package threads

import "sync"

// Status records whether interrupts were enabled at the point a Disable
// call was made, so that a matching Restore can put them back exactly as
// it found them. This mirrors Machine.interrupt().disable()/restore() in
// the original sources: a single flag, not a nesting counter, is enough
// because callers always save-and-restore around a scoped critical
// section rather than disabling recursively.
type Status bool

// The two interrupt states. Disabled-by-default code paths never consult
// these directly; they're returned by Disable and consumed by Restore.
const (
	Enabled  Status = true
	Disabled Status = false
)

// schedMu is the sole mutual-exclusion primitive for scheduler, wait-queue,
// alarm and per-thread state, matching §5's "interrupts disabled is the
// only mutex" model. Because our kernel threads are real goroutines rather
// than a single physical CPU doing cooperative stack switches, this has to
// be a genuine mutex: the scheduler-touching entry points in this package
// (Yield, Finish, Join, Fork, Current, Lock, Condition, Alarm) wrap their
// body in Disable/Restore exactly once, never nested, so a plain
// (non-reentrant) mutex is sufficient. Sleep and Ready do not take it
// themselves; their callers must already hold it. Communicator goes
// through Lock and Condition.
var schedMu sync.Mutex

// idleCond is used by the scheduling loop to park when no thread is ready
// to run, and is woken any time a thread transitions to ready.
var idleCond = sync.NewCond(&schedMu)

// enabled tracks whether interrupts are currently enabled, purely for
// InterruptsDisabled()'s benefit; schedMu is what actually provides
// exclusion.
var enabled = true

// DisableInterrupts acquires the scheduler lock and returns the interrupt
// status that was in effect beforehand. Every public entry point that
// mutates scheduler state calls this first and Restore last.
func DisableInterrupts() Status {
	schedMu.Lock()
	prev := enabled
	enabled = false
	return Status(prev)
}

// RestoreInterrupts releases the scheduler lock, restoring the interrupt
// status captured by the matching DisableInterrupts call.
func RestoreInterrupts(prev Status) {
	enabled = bool(prev)
	schedMu.Unlock()
}

// InterruptsDisabled reports whether the caller is currently inside a
// Disable/Restore section, the counterpart of the original source's
// Machine.interrupt().disabled(). Nothing in this package calls it.
func InterruptsDisabled() bool {
	return !enabled
}
