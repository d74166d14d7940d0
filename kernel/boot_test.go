package kernel

import (
	"bytes"
	"os"
	"testing"

	"nachos/kernel/userproc"
)

func TestBootRunsRegisteredProgram(t *testing.T) {
	defer func() { haltFn = func() { os.Exit(1) } }()
	haltFn = func() {}

	var out bytes.Buffer
	k := Boot(Config{NumPhysPages: 32, Stdout: &out})

	var gotArgs []string
	k.RegisterProgram("hello", func(p *userproc.UserProcess, args []string) {
		gotArgs = args
	})

	if ok := k.Root.RunProgram("hello", []string{"hello", "world"}); !ok {
		t.Fatalf("expected RunProgram to find the registered program")
	}
	if len(gotArgs) != 2 || gotArgs[0] != "hello" || gotArgs[1] != "world" {
		t.Fatalf("expected the registered program to receive its argv, got %v", gotArgs)
	}
}

func TestBootRunProgramReportsUnknownName(t *testing.T) {
	k := Boot(Config{NumPhysPages: 32})
	if ok := k.Root.RunProgram("does-not-exist", nil); ok {
		t.Fatalf("expected RunProgram to fail for an unregistered name")
	}
}

func TestBootHaltInvokesHaltFn(t *testing.T) {
	defer func() { haltFn = func() {} }()

	var haltCalled bool
	haltFn = func() { haltCalled = true }

	k := Boot(Config{NumPhysPages: 32})
	k.RegisterProgram("halter", func(p *userproc.UserProcess, args []string) {
		p.Halt()
	})

	k.Root.RunProgram("halter", nil)
	if !haltCalled {
		t.Fatalf("expected the root process's halt syscall to invoke haltFn")
	}
}
