package build

import (
	"io"
	"os/exec"
	"strings"
)

// Command is one compiler invocation.
type Command struct {
	Path string
	Dir  string
	Args []string
}

// String renders the command as a single line, the way it would be typed.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Path))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// Runner starts a command and waits for it to exit.
// A non-nil error of type *exec.ExitError means the process ran and exited non-zero.
type Runner interface {
	Run(cmd Command) error
}

// ExecRunner runs commands with os/exec. The child's output streams go to
// Stdout and Stderr, or are discarded when nil.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts cmd and blocks until it exits. There is no timeout.
func (r ExecRunner) Run(cmd Command) error {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	return c.Run()
}
