package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes one external process to completion. The engine's default
// runner shells out; tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, workDir string, env []string, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, workDir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	cmd.Env = env

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("%w: %s", err, stderr.String())
		}
		return err
	}
	return nil
}
