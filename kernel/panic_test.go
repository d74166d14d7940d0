package kernel

import (
	"fmt"
	"strings"
	"testing"
)

func TestPanic(t *testing.T) {
	defer func() {
		haltFn = func() {}
		logFn = func(string, ...interface{}) {}
	}()

	var haltCalled bool
	haltFn = func() { haltCalled = true }

	var lines []string
	logFn = func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	t.Run("with error", func(t *testing.T) {
		haltCalled, lines = false, nil
		err := &Error{Module: "test", Message: "panic test"}

		Panic(err)

		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, "[test] unrecoverable error: panic test") {
			t.Fatalf("expected error line to be logged; got %q", joined)
		}
		if !haltCalled {
			t.Fatal("expected haltFn to be called by Panic")
		}
	})

	t.Run("without error", func(t *testing.T) {
		haltCalled, lines = false, nil

		Panic(nil)

		for _, l := range lines {
			if strings.Contains(l, "unrecoverable error") {
				t.Fatalf("did not expect an error line; got %q", l)
			}
		}
		if !haltCalled {
			t.Fatal("expected haltFn to be called by Panic")
		}
	})

	t.Run("string panic", func(t *testing.T) {
		haltCalled, lines = false, nil

		Panic("boom")

		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, "unrecoverable error") || errRuntimePanic.Message != "boom" {
			t.Fatalf("expected string panic to be routed through errRuntimePanic; got %q", joined)
		}
		if !haltCalled {
			t.Fatal("expected haltFn to be called by Panic")
		}
	})
}

func TestAssert(t *testing.T) {
	defer func() {
		haltFn = func() {}
		logFn = func(string, ...interface{}) {}
	}()

	var haltCalled bool
	haltFn = func() { haltCalled = true }
	logFn = func(string, ...interface{}) {}

	Assert("test", true, "should not fire")
	if haltCalled {
		t.Fatal("Assert should not halt when cond is true")
	}

	Assert("test", false, "should fire")
	if !haltCalled {
		t.Fatal("Assert should halt when cond is false")
	}
}
