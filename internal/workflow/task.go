package workflow

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Handler observes task execution. Hooks run on the executing goroutine;
// an error from either hook aborts the workflow like a task failure.
type Handler interface {
	// OnStart is invoked after dependencies resolve, before Run.
	OnStart(task Task) error

	// OnFinish is invoked after Run with its result and error.
	OnFinish(task Task, result interface{}, err error) error
}

// Requirements lists a task's upstream dependencies: an ordered positional
// sequence and a named mapping. Named requirements reach Run keyed by their
// requirement name, positional ones in declaration order.
type Requirements struct {
	Positional []Task
	Named      map[string]Task
}

// Inputs carries resolved dependency results into Run.
type Inputs struct {
	Positional []interface{}
	Named      map[string]interface{}
}

// Task is a named unit of deferred computation with declared upstream
// dependencies. A task may be required by any number of downstream tasks;
// the workflow runs it exactly once per Compute.
type Task interface {
	// Name returns the task's name. Names must be unique and non-empty
	// within a workflow; Compute rejects graphs that violate this.
	Name() string

	// Handlers returns the task's observation hooks, in invocation order.
	Handlers() []Handler

	// Requirements returns the task's declared dependencies.
	Requirements() Requirements

	// Run produces the task's result given resolved dependency values.
	Run(ctx context.Context, in Inputs) (interface{}, error)
}

// Base provides the identity and requirements plumbing shared by task types.
// Concrete tasks embed *Base and override Run.
type Base struct {
	name     string
	handlers []Handler
	reqs     Requirements
}

// NewBase creates the embedded core of a task.
func NewBase(name string, handlers ...Handler) *Base {
	return &Base{name: name, handlers: handlers}
}

// Name returns the task's name.
func (b *Base) Name() string {
	return b.name
}

// Handlers returns the task's observation hooks.
func (b *Base) Handlers() []Handler {
	return b.handlers
}

// Requirements returns the task's declared dependencies.
func (b *Base) Requirements() Requirements {
	return b.reqs
}

// Requires records the task's dependencies. Calling it again replaces the
// prior requirement set; it never accumulates.
func (b *Base) Requires(positional []Task, named map[string]Task) {
	b.reqs = Requirements{Positional: positional, Named: named}
}

// Run on the base task signals the abstract contract; concrete task types
// must override it.
func (b *Base) Run(ctx context.Context, in Inputs) (interface{}, error) {
	return nil, fmt.Errorf("task %q does not implement Run", b.name)
}

// FunctionTask wraps a plain function as a task.
type FunctionTask struct {
	*Base
	fn func(ctx context.Context, in Inputs) (interface{}, error)
}

// NewFunctionTask creates a task that runs fn.
func NewFunctionTask(name string, fn func(ctx context.Context, in Inputs) (interface{}, error), handlers ...Handler) *FunctionTask {
	return &FunctionTask{Base: NewBase(name, handlers...), fn: fn}
}

// Run invokes the wrapped function.
func (t *FunctionTask) Run(ctx context.Context, in Inputs) (interface{}, error) {
	return t.fn(ctx, in)
}

// InputTask injects a fixed value into a workflow.
type InputTask struct {
	*Base
	value interface{}
}

// NewInputTask creates a task whose result is value.
func NewInputTask(name string, value interface{}, handlers ...Handler) *InputTask {
	return &InputTask{Base: NewBase(name, handlers...), value: value}
}

// Run returns the injected value.
func (t *InputTask) Run(ctx context.Context, in Inputs) (interface{}, error) {
	return t.value, nil
}

// ShellCommand runs a command line through the OS and yields no result.
type ShellCommand struct {
	*Base
	command string
}

// NewShellCommand creates a task that runs the given command line. The line
// is split on whitespace; no shell interpretation happens.
func NewShellCommand(name, command string, handlers ...Handler) *ShellCommand {
	return &ShellCommand{Base: NewBase(name, handlers...), command: command}
}

// Run executes the command, blocking until it exits or ctx is cancelled.
func (t *ShellCommand) Run(ctx context.Context, in Inputs) (interface{}, error) {
	fields := strings.Fields(t.command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("task %q has an empty command", t.name)
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("command %q failed: %w", t.command, err)
	}
	return nil, nil
}
