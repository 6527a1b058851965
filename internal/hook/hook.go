// SPDX-License-Identifier: MPL-2.0

// Package hook runs post-generation shell scripts with an embedded POSIX
// shell, so hooks behave the same on every platform.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// Runner executes hook scripts in Dir with Env as the full environment.
	Runner struct {
		Dir    string
		Env    []string
		Stdout io.Writer
		Stderr io.Writer
	}

	// ExitError reports a hook that finished with a non-zero status.
	ExitError struct {
		Name string
		Code int
	}
)

func (e *ExitError) Error() string {
	return fmt.Sprintf("hook %s exited with status %d", e.Name, e.Code)
}

// Validate parses every script and reports the first syntax error, so a
// broken hook list fails before any hook has run.
func Validate(scripts []string) error {
	for i, script := range scripts {
		if _, err := parse(Name(i), script); err != nil {
			return err
		}
	}
	return nil
}

// Name is the display name of the i-th hook.
func Name(i int) string {
	return fmt.Sprintf("after_generate[%d]", i)
}

// Run executes one script. A non-zero exit yields *ExitError; a canceled ctx
// stops the script.
func (r *Runner) Run(ctx context.Context, name, script string) error {
	prog, err := parse(name, script)
	if err != nil {
		return err
	}

	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(r.Env...)),
		interp.StdIO(nil, writerOrDiscard(r.Stdout), writerOrDiscard(r.Stderr)),
	)
	if err != nil {
		return fmt.Errorf("hook %s: create interpreter: %w", name, err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Name: name, Code: int(status)}
		}
		return fmt.Errorf("hook %s: %w", name, err)
	}
	return nil
}

// RunAll executes scripts in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, scripts []string) error {
	if err := Validate(scripts); err != nil {
		return err
	}
	for i, script := range scripts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Run(ctx, Name(i), script); err != nil {
			return err
		}
	}
	return nil
}

func parse(name, script string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return nil, fmt.Errorf("hook %s: syntax error: %w", name, err)
	}
	return prog, nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
