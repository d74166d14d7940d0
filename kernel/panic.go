package kernel

import (
	"log"
	"os"
)

var (
	// haltFn is invoked by Panic after reporting the error, and by the
	// halt path Boot installs. By default it exits the host process with
	// status 1; tests override it so that a halt does not exit the test
	// binary.
	haltFn = func() { os.Exit(1) }

	// logFn is overridden by tests to capture output instead of writing
	// to the process's stderr.
	logFn = log.Printf

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic reports the supplied error (if any) and halts the kernel by
// calling haltFn; it returns only if haltFn does. The invariant checks in
// kernel/threads (a re-entrant lock acquire, a release by a non-holder,
// an out-of-range priority) do not go through Panic: they use Go's
// built-in panic, since this package imports kernel/threads.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	case nil:
		err = nil
	}

	logFn("-----------------------------------")
	if err != nil {
		logFn("[%s] unrecoverable error: %s", err.Module, err.Message)
	}
	logFn("*** kernel panic: system halted ***")
	logFn("-----------------------------------")

	haltFn()
}

// panicString serves as a redirection target for plain string panics raised
// by asserts elsewhere in the kernel.
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}

// Assert panics with an *Error attributed to module if cond is false, the
// Go counterpart of the original Nachos code's Lib.assertTrue(...). The
// scheduler and wait-queue checks in kernel/threads do not call it.
func Assert(module string, cond bool, message string) {
	if !cond {
		Panic(&Error{Module: module, Message: message})
	}
}
