// Command mbhelper builds MapBasic projects and launches MapInfo Pro.
//
// The classic two-argument form builds a folder:
//
//	mbhelper [path/to/mapbasic.exe] <folder>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// Process exit codes.
const (
	ExitSuccess     = 0 // no errors found
	ExitFailure     = 1 // errors found or invalid invocation
	ExitConfigError = 2 // settings file or flags could not be used
)

// exitError carries an exit code out of a command. A nil err means the
// command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr).execute(ctx, args)
}

// exitCode maps a command error to an exit code, printing its message.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(stderr, "Error:", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return ExitFailure
}
