// Package engine drives an external quantum-chemistry executable: it builds
// the command line, assembles a per-invocation environment, isolates scratch
// space, and runs the process under a context.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	qcerrors "github.com/chemtools/qcflow/internal/errors"
	"github.com/chemtools/qcflow/internal/logger"
)

// Engine holds the invocation configuration for the external executable.
// Zero values mean "omit from the command line".
type Engine struct {
	Executable    string
	NumProcessors int
	NumThreads    int
	Arguments     []string
	ScratchDir    string
	SetupScript   string
	Save          bool
	SaveName      string
	Env           map[string]string

	runner Runner
}

// Option configures an Engine.
type Option func(*Engine)

// WithProcessors sets the -np value.
func WithProcessors(n int) Option {
	return func(e *Engine) { e.NumProcessors = n }
}

// WithThreads sets the -nt value.
func WithThreads(n int) Option {
	return func(e *Engine) { e.NumThreads = n }
}

// WithArguments sets extra arguments placed before -np/-nt.
func WithArguments(args ...string) Option {
	return func(e *Engine) { e.Arguments = args }
}

// WithScratchDir sets the root under which per-invocation scratch
// directories are created and exported to the subprocess.
func WithScratchDir(dir string) Option {
	return func(e *Engine) { e.ScratchDir = dir }
}

// WithSetupScript sets a shell script sourced to seed the subprocess
// environment.
func WithSetupScript(path string) Option {
	return func(e *Engine) { e.SetupScript = path }
}

// WithSave enables the -save flag; a non-empty name is passed as the save
// name before the input file.
func WithSave(name string) Option {
	return func(e *Engine) {
		e.Save = true
		e.SaveName = name
	}
}

// WithEnv sets additional environment overrides for the subprocess.
func WithEnv(env map[string]string) Option {
	return func(e *Engine) { e.Env = env }
}

// WithRunner replaces the subprocess runner. Tests use this to stub the
// executable.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// New builds an engine around an executable.
func New(executable string, opts ...Option) *Engine {
	e := &Engine{Executable: executable, runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Command builds the invocation argv:
//
//	<exe> [-save] [extra...] [-np N] [-nt N] [savename] <input> <output>
func (e *Engine) Command(inputPath, outputPath string, extra ...string) []string {
	cmd := []string{e.Executable}
	if e.Save {
		cmd = append(cmd, "-save")
	}
	cmd = append(cmd, e.Arguments...)
	cmd = append(cmd, extra...)
	if e.NumProcessors > 0 {
		cmd = append(cmd, "-np", strconv.Itoa(e.NumProcessors))
	}
	if e.NumThreads > 0 {
		cmd = append(cmd, "-nt", strconv.Itoa(e.NumThreads))
	}
	if e.Save && e.SaveName != "" {
		cmd = append(cmd, e.SaveName)
	}
	return append(cmd, inputPath, outputPath)
}

// Execute runs the executable once against the descriptor's input/output
// files. The subprocess gets a freshly computed environment: the setup
// script's exports if configured, a per-invocation scratch directory, and
// the engine's overrides. The scratch directory is removed when the process
// exits; the caller's environment is never mutated.
func (e *Engine) Execute(ctx context.Context, io IO, extra ...string) error {
	scope, err := io.Scope()
	if err != nil {
		return err
	}

	env, err := e.environ(ctx)
	if err != nil {
		return err
	}

	if e.ScratchDir != "" {
		scratch := filepath.Join(e.ScratchDir, uuid.NewString())
		if err := os.MkdirAll(scratch, 0o755); err != nil {
			return fmt.Errorf("creating scratch directory: %w", err)
		}
		defer os.RemoveAll(scratch)
		env = setEnv(env, "QCSCRATCH", scratch)
	}

	cmd := e.Command(scope.InputPath(), scope.OutputPath(), extra...)

	logger.Op.WithFields(map[string]interface{}{
		"command":  strings.Join(cmd, " "),
		"work_dir": io.WorkDir,
	}).Debug("Invoking engine")

	if err := e.runner.Run(ctx, io.WorkDir, env, cmd[0], cmd[1:]...); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return qcerrors.NewExecMissingError(e.Executable, err)
		}
		return qcerrors.NewExecFailedError(e.Executable, err)
	}
	return nil
}

// environ computes the subprocess environment without touching process
// globals.
func (e *Engine) environ(ctx context.Context) ([]string, error) {
	var env []string
	if e.SetupScript != "" {
		sourced, err := sourceScript(ctx, e.SetupScript)
		if err != nil {
			return nil, err
		}
		env = sourced
	} else {
		env = os.Environ()
	}

	keys := make([]string, 0, len(e.Env))
	for k := range e.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, e.Env[k])
	}
	return env, nil
}

// sourceScript captures the environment a shell ends up with after sourcing
// the script.
func sourceScript(ctx context.Context, script string) ([]string, error) {
	out, err := exec.CommandContext(ctx, "sh", "-c", ". "+script+" && env -0").Output()
	if err != nil {
		return nil, fmt.Errorf("sourcing setup script %s: %w", script, err)
	}
	return parseNullSeparatedEnv(out), nil
}

func parseNullSeparatedEnv(out []byte) []string {
	var env []string
	for _, entry := range strings.Split(string(out), "\x00") {
		if strings.Contains(entry, "=") {
			env = append(env, entry)
		}
	}
	return env
}

// setEnv overrides key in env, appending if absent.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
