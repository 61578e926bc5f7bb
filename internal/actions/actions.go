// Package actions executes matched command actions and types dictation
// text into the focused application.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/go-vgo/robotgo"
)

// shellPrefix marks an action that runs as a shell command instead of
// being typed.
const shellPrefix = "cmd:"

// Executor dispatches command actions. The keystroke and shell functions
// are injectable so dispatch logic can be tested without touching the
// desktop.
type Executor struct {
	typeText func(text string)
	runShell func(ctx context.Context, command string) error
}

// Option is a functional option for [NewExecutor].
type Option func(*Executor)

// WithTypeFunc replaces the keystroke injector.
func WithTypeFunc(fn func(text string)) Option {
	return func(e *Executor) { e.typeText = fn }
}

// WithShellFunc replaces the shell runner.
func WithShellFunc(fn func(ctx context.Context, command string) error) Option {
	return func(e *Executor) { e.runShell = fn }
}

// NewExecutor builds an Executor that types via robotgo and runs shell
// actions through `sh -c`.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		typeText: robotgo.TypeStr,
		runShell: runShell,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs action: "cmd:"-prefixed actions run as shell commands,
// everything else is typed as keystrokes followed by a space.
func (e *Executor) Execute(ctx context.Context, action string) error {
	if cmd, ok := strings.CutPrefix(action, shellPrefix); ok {
		slog.Info("running shell action", "command", cmd)
		if err := e.runShell(ctx, cmd); err != nil {
			return fmt.Errorf("actions: shell action %q: %w", cmd, err)
		}
		return nil
	}

	slog.Info("typing action", "length", len(action))
	e.typeText(action + " ")
	return nil
}

// TypeDictation types free-form dictation text followed by a space so
// consecutive utterances don't run together. Empty text is a no-op.
func (e *Executor) TypeDictation(text string) {
	if text == "" {
		return
	}
	e.typeText(text + " ")
}

func runShell(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
