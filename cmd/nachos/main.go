// Command nachos boots one machine instance, registers its built-in demo
// programs, and runs whichever one -x names as the root process's
// program.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"nachos/kernel"
	"nachos/kernel/threads"
	"nachos/kernel/userproc"
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[nachos] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	program := flag.String("x", "", "name of the built-in program to run; any arguments after it are passed to the program as argv")
	numPhysPages := flag.Int("m", 64, "physical memory size, in pages")
	verbose := flag.Bool("v", false, "trace every syscall a process makes")
	lottery := flag.Bool("lottery", false, "use the lottery scheduler instead of the priority scheduler")
	flag.Parse()

	if *program == "" {
		exit(fmt.Errorf("-x is required; registered programs: %v", registeredNames()))
	}

	userproc.Verbose = *verbose

	cfg := kernel.Config{
		NumPhysPages: *numPhysPages,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
	}
	if *lottery {
		cfg.Scheduler = threads.NewLotteryScheduler(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	k := kernel.Boot(cfg)
	registerBuiltins(k)

	// The program's argv ends at the first "-"-prefixed token.
	args := flag.Args()
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			args = args[:i]
			break
		}
	}

	if ok := k.Root.RunProgram(*program, args); !ok {
		exit(fmt.Errorf("no such program %q; registered: %v", *program, registeredNames()))
	}
}
