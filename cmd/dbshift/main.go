package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/velora-dev/dbshift/internal/cli"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(dbshift.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(dbshift.ExitCodeForError(err))
	}
}
