package machine

import (
	"bytes"
	"strings"
	"testing"
)

func TestProcessorAdvancePC(t *testing.T) {
	p := NewProcessor(1, 4096)
	p.PC = 0
	p.NextPC = 4
	p.AdvancePC()
	if p.PC != 4 || p.NextPC != 8 {
		t.Fatalf("expected PC=4, NextPC=8; got PC=%d, NextPC=%d", p.PC, p.NextPC)
	}
}

func TestMemFSCreateOpenUnlink(t *testing.T) {
	fs := NewMemFS()

	if _, ok := fs.Open("foo", false); ok {
		t.Fatalf("expected open without create to fail on a missing file")
	}

	f, ok := fs.Open("foo", true)
	if !ok {
		t.Fatalf("expected create to succeed")
	}
	if _, err := f.Write([]byte("hello"), 0, 5); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	f.Close()

	f2, ok := fs.Open("foo", false)
	if !ok {
		t.Fatalf("expected open of existing file to succeed")
	}
	buf := make([]byte, 5)
	n, err := f2.Read(buf, 0, 5)
	if err != nil || n != 5 || string(buf) != "hello" {
		t.Fatalf("expected to read back %q, got %q (n=%d, err=%v)", "hello", buf[:n], n, err)
	}

	if !fs.Remove("foo") {
		t.Fatalf("expected unlink to succeed")
	}
	if _, ok := fs.Open("foo", false); ok {
		t.Fatalf("expected open after unlink to fail")
	}
}

func TestConsoleStdinStdout(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("input"), &out)

	stdin := c.Stdin()
	buf := make([]byte, 5)
	n, err := stdin.Read(buf, 0, 5)
	if err != nil || string(buf[:n]) != "input" {
		t.Fatalf("expected to read %q from stdin, got %q (err=%v)", "input", buf[:n], err)
	}

	stdout := c.Stdout()
	if _, err := stdout.Write([]byte("output"), 0, 6); err != nil {
		t.Fatalf("write to stdout failed: %v", err)
	}
	if out.String() != "output" {
		t.Fatalf("expected stdout buffer to contain %q, got %q", "output", out.String())
	}
}
