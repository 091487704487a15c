package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// IO names the input and output files of one engine invocation inside a work
// directory.
type IO struct {
	InputName  string
	OutputName string
	WorkDir    string
}

// NewIO builds a descriptor.
func NewIO(inputName, outputName, workDir string) IO {
	return IO{InputName: inputName, OutputName: outputName, WorkDir: workDir}
}

// Scope materializes the descriptor: the work directory is created if needed
// and the returned scope resolves file paths inside it.
func (d IO) Scope() (*Scope, error) {
	if err := os.MkdirAll(d.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work directory %s: %w", d.WorkDir, err)
	}
	return &Scope{d: d}, nil
}

// Scope is a materialized IO descriptor.
type Scope struct {
	d IO
}

// InputPath returns the absolute-or-relative input file path.
func (s *Scope) InputPath() string {
	return filepath.Join(s.d.WorkDir, s.d.InputName)
}

// OutputPath returns the output file path.
func (s *Scope) OutputPath() string {
	return filepath.Join(s.d.WorkDir, s.d.OutputName)
}

// WriteInput writes the rendered input deck.
func (s *Scope) WriteInput(content string) error {
	if err := os.WriteFile(s.InputPath(), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing input file: %w", err)
	}
	return nil
}

// ReadOutput reads the engine's output file.
func (s *Scope) ReadOutput() (string, error) {
	data, err := os.ReadFile(s.OutputPath())
	if err != nil {
		return "", fmt.Errorf("reading output file: %w", err)
	}
	return string(data), nil
}
