package qchem

import (
	"context"
	"fmt"
	"strings"

	"github.com/chemtools/qcflow/internal/chem"
	"github.com/chemtools/qcflow/internal/engine"
	"github.com/chemtools/qcflow/internal/logger"
	"github.com/chemtools/qcflow/internal/quantity"
	"github.com/chemtools/qcflow/internal/workflow"
)

// external is the shared core of every calculation task: render the deck,
// run the executable exactly once, load the output.
type external struct {
	eng *engine.Engine
	io  engine.IO
}

func (x external) execute(ctx context.Context, mol *chem.Molecule, s *Settings, extra ...string) (*Output, error) {
	scope, err := x.io.Scope()
	if err != nil {
		return nil, err
	}

	deck := NewInput(s, mol).String()
	if err := scope.WriteInput(deck); err != nil {
		return nil, err
	}

	if err := x.eng.Execute(ctx, x.io, extra...); err != nil {
		return nil, err
	}

	return ReadOutputFile(scope.OutputPath())
}

// moleculeFrom pulls the molecule out of resolved task inputs: the "molecule"
// named input, else the first positional one.
func moleculeFrom(in workflow.Inputs) (*chem.Molecule, error) {
	var v interface{}
	if named, ok := in.Named["molecule"]; ok {
		v = named
	} else if len(in.Positional) > 0 {
		v = in.Positional[0]
	}
	mol, ok := v.(*chem.Molecule)
	if !ok || mol == nil {
		return nil, fmt.Errorf("task requires a molecule input")
	}
	return mol, nil
}

// settingsFrom pulls optional settings out of resolved task inputs.
func settingsFrom(in workflow.Inputs) *Settings {
	if v, ok := in.Named["settings"]; ok {
		if s, ok := v.(*Settings); ok {
			return s
		}
	}
	if len(in.Positional) > 1 {
		if s, ok := in.Positional[1].(*Settings); ok {
			return s
		}
	}
	return nil
}

func singlePointDefaults(s *Settings) {
	if !s.HasAny("rem", "exchange", "method") {
		s.SetDefault("rem", "exchange", "hf")
	}
	s.SetDefault("rem", "basis", "3-21G")
	s.SetDefault("rem", "jobtype", "sp")
}

// SinglePoint computes the ground-state SCF energy. Its result is the last
// converged total energy in eV, or nil when the output carries no converged
// energy.
type SinglePoint struct {
	*workflow.Base
	external
}

// NewSinglePoint builds a single-point task.
func NewSinglePoint(eng *engine.Engine, io engine.IO, name string, handlers ...workflow.Handler) *SinglePoint {
	return &SinglePoint{Base: workflow.NewBase(name, handlers...), external: external{eng: eng, io: io}}
}

// Run implements the workflow task: molecule and optional settings arrive as
// resolved inputs.
func (t *SinglePoint) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the calculation directly. A nil energy means the output held
// no converged SCF marker (unconverged or truncated run).
func (t *SinglePoint) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (*quantity.Quantity, error) {
	s := settings.Clone()
	singlePointDefaults(s)

	out, err := t.execute(ctx, mol, s)
	if err != nil {
		return nil, err
	}
	return out.TotalEnergy(), nil
}

// FrontierResult is a single-point energy together with the frontier
// orbital energies, all in eV.
type FrontierResult struct {
	Energy quantity.Quantity
	HOMO   quantity.Quantity
	LUMO   quantity.Quantity
}

// SinglePointFrontier computes the SCF energy plus HOMO/LUMO. Result is
// *FrontierResult, nil when the output lacks either marker.
type SinglePointFrontier struct {
	*workflow.Base
	external
}

// NewSinglePointFrontier builds the task.
func NewSinglePointFrontier(eng *engine.Engine, io engine.IO, name string, handlers ...workflow.Handler) *SinglePointFrontier {
	return &SinglePointFrontier{Base: workflow.NewBase(name, handlers...), external: external{eng: eng, io: io}}
}

func (t *SinglePointFrontier) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the calculation directly.
func (t *SinglePointFrontier) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (*FrontierResult, error) {
	s := settings.Clone()
	singlePointDefaults(s)

	out, err := t.execute(ctx, mol, s)
	if err != nil {
		return nil, err
	}

	energy := out.TotalEnergy()
	frontier := out.Frontier()
	if energy == nil || frontier == nil {
		return nil, nil
	}
	return &FrontierResult{Energy: *energy, HOMO: frontier.HOMO, LUMO: frontier.LUMO}, nil
}

// LRTDDFT computes electronic excitations via linear-response TDDFT and
// attaches the spectrum to the molecule.
type LRTDDFT struct {
	*workflow.Base
	external
}

// NewLRTDDFT builds the task.
func NewLRTDDFT(eng *engine.Engine, io engine.IO, name string, handlers ...workflow.Handler) *LRTDDFT {
	return &LRTDDFT{Base: workflow.NewBase(name, handlers...), external: external{eng: eng, io: io}}
}

func (t *LRTDDFT) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the calculation directly.
func (t *LRTDDFT) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (*chem.Molecule, error) {
	s := settings.Clone()
	if !s.HasAny("rem", "exchange", "method") {
		s.SetDefault("rem", "exchange", "hf")
	}
	s.SetDefault("rem", "basis", "3-21G")
	s.SetDefault("rem", "cis_n_roots", 1)
	s.SetDefault("rem", "cis_singlets", true)
	s.SetDefault("rem", "cis_triplets", false)
	s.SetDefault("rem", "rpa", true)

	out, err := t.execute(ctx, mol, s)
	if err != nil {
		return nil, err
	}

	spectrum, err := out.Excitations()
	if err != nil {
		return nil, err
	}
	mol.Excitations = spectrum
	return mol, nil
}

// Optimize relaxes the geometry and replaces the molecule's structure with
// the optimized one.
type Optimize struct {
	*workflow.Base
	external
}

// NewOptimize builds the task.
func NewOptimize(eng *engine.Engine, io engine.IO, name string, handlers ...workflow.Handler) *Optimize {
	return &Optimize{Base: workflow.NewBase(name, handlers...), external: external{eng: eng, io: io}}
}

func (t *Optimize) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the calculation directly.
func (t *Optimize) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (*chem.Molecule, error) {
	s := settings.Clone()
	if !s.HasAny("rem", "exchange", "method") {
		s.SetDefault("rem", "exchange", "hf")
	}
	s.SetDefault("rem", "basis", "3-21G")
	s.SetDefault("rem", "jobtype", "opt")

	out, err := t.execute(ctx, mol, s)
	if err != nil {
		return nil, err
	}

	structure, err := out.FinalStructure()
	if err != nil {
		return nil, err
	}
	mol.Structure = structure
	return mol, nil
}

// Polarizability computes the static polarizability tensor and attaches it
// to the molecule. A missing tensor in the output leaves the field nil.
type Polarizability struct {
	*workflow.Base
	external
}

// NewPolarizability builds the task. The subprocess gets QCINFILEBASE=0, a
// workaround for parallel polarizability runs in Q-Chem 5.2.x.
func NewPolarizability(eng *engine.Engine, io engine.IO, name string, handlers ...workflow.Handler) *Polarizability {
	patched := *eng
	patched.Env = map[string]string{"QCINFILEBASE": "0"}
	for k, v := range eng.Env {
		patched.Env[k] = v
	}
	return &Polarizability{Base: workflow.NewBase(name, handlers...), external: external{eng: &patched, io: io}}
}

func (t *Polarizability) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the calculation directly.
func (t *Polarizability) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (*chem.Molecule, error) {
	s := settings.Clone()
	if !s.HasAny("rem", "exchange", "method") {
		s.SetDefault("rem", "exchange", "hf")
	}
	s.SetDefault("rem", "basis", "3-21G")
	s.SetDefault("rem", "jobtype", "polarizability")

	out, err := t.execute(ctx, mol, s)
	if err != nil {
		return nil, err
	}

	mol.Polarizability = out.Polarizability()
	return mol, nil
}

// AIMD runs ab initio molecular dynamics and returns the raw output text for
// downstream trajectory analysis.
type AIMD struct {
	*workflow.Base
	external
}

// NewAIMD builds the task.
func NewAIMD(eng *engine.Engine, io engine.IO, name string, handlers ...workflow.Handler) *AIMD {
	return &AIMD{Base: workflow.NewBase(name, handlers...), external: external{eng: eng, io: io}}
}

func (t *AIMD) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the calculation directly.
func (t *AIMD) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (string, error) {
	s := settings.Clone()
	if !s.HasAny("rem", "exchange", "method") {
		s.SetDefault("rem", "exchange", "hf")
	}
	s.SetDefault("rem", "basis", "3-21G")
	s.SetDefault("rem", "jobtype", "aimd")
	s.SetDefault("rem", "time_step", 1)
	s.SetDefault("rem", "aimd_steps", 10)
	if !s.Has("rem", "aimd_init_veloc") {
		s.Set("rem", "aimd_init_veloc", "thermal")
	}
	if v, ok := s.Get("rem", "aimd_init_veloc"); ok {
		if str, ok := v.(string); ok && strings.EqualFold(strings.TrimSpace(str), "thermal") {
			s.SetDefault("rem", "aimd_temp", 300)
		}
	}

	out, err := t.execute(ctx, mol, s)
	if err != nil {
		return "", err
	}

	logger.Op.WithFields(map[string]interface{}{
		"task":  t.Name(),
		"bytes": len(out.Text),
	}).Debug("AIMD trajectory captured")

	return out.Text, nil
}
