package qchem

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/chemtools/qcflow/internal/chem"
	"github.com/chemtools/qcflow/internal/engine"
	"github.com/chemtools/qcflow/internal/logger"
	"github.com/chemtools/qcflow/internal/optimize"
	"github.com/chemtools/qcflow/internal/quantity"
	"github.com/chemtools/qcflow/internal/workflow"
)

// KoopmanError measures how far a functional is from Koopman compliance:
// single points on the neutral, cation, and anion give the ionization
// potential and electron affinity, which ideally cancel the neutral's HOMO
// and LUMO. The result is the residual in eV.
type KoopmanError struct {
	*workflow.Base
	eng      *engine.Engine
	gsIO     engine.IO
	cationIO engine.IO
	anionIO  engine.IO
}

// NewKoopmanError builds the task over three invocation descriptors, one per
// charge state.
func NewKoopmanError(eng *engine.Engine, gsIO, cationIO, anionIO engine.IO, name string, handlers ...workflow.Handler) *KoopmanError {
	return &KoopmanError{
		Base:     workflow.NewBase(name, handlers...),
		eng:      eng,
		gsIO:     gsIO,
		cationIO: cationIO,
		anionIO:  anionIO,
	}
}

func (t *KoopmanError) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the three charge states as a sub-workflow and combines them.
func (t *KoopmanError) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (quantity.Quantity, error) {
	s := settings.Clone()
	singlePointDefaults(s)

	neutral := NewSinglePointFrontier(t.eng, t.gsIO, "neutral")
	cation := NewSinglePoint(t.eng, t.cationIO, "cation")
	anion := NewSinglePoint(t.eng, t.anionIO, "anion")

	settingsTask := workflow.NewInputTask("settings", s)
	neutral.Requires(nil, map[string]workflow.Task{
		"molecule": workflow.NewInputTask("neutral molecule", mol),
		"settings": settingsTask,
	})
	cation.Requires(nil, map[string]workflow.Task{
		"molecule": workflow.NewInputTask("cation molecule", mol.Cation()),
		"settings": settingsTask,
	})
	anion.Requires(nil, map[string]workflow.Task{
		"molecule": workflow.NewInputTask("anion molecule", mol.Anion()),
		"settings": settingsTask,
	})

	results, err := workflow.New(neutral, cation, anion).Compute(ctx)
	if err != nil {
		return quantity.Quantity{}, err
	}

	neutralRes, _ := results["neutral"].(*FrontierResult)
	cationE, _ := results["cation"].(*quantity.Quantity)
	anionE, _ := results["anion"].(*quantity.Quantity)
	if neutralRes == nil || cationE == nil || anionE == nil {
		return quantity.Quantity{}, fmt.Errorf("task %s: one or more charge states produced no converged energy", t.Name())
	}

	e0 := neutralRes.Energy.MustConvert(quantity.EV).Value
	homo := neutralRes.HOMO.MustConvert(quantity.EV).Value
	lumo := neutralRes.LUMO.MustConvert(quantity.EV).Value
	ip := cationE.MustConvert(quantity.EV).Value - e0
	ea := e0 - anionE.MustConvert(quantity.EV).Value

	j2 := (ip + homo) * (ip + homo)
	// the LUMO term only constrains bound anions
	if ea > 0 {
		j2 += (ea + lumo) * (ea + lumo)
	}

	return quantity.New(math.Sqrt(j2), quantity.EV), nil
}

// TuningOptions parameterize the range-separation search.
type TuningOptions struct {
	// Permittivity is the environment's dielectric constant; the long-range
	// HF fraction is its inverse. Zero means vacuum (1).
	Permittivity float64

	// Alpha pins the short-range HF fraction; nil searches it alongside
	// omega.
	Alpha *float64

	// Budget is the number of Koopman error evaluations the search may
	// spend. Zero means 5.
	Budget int

	// Seed pins the optimizer's sampling sequence.
	Seed int64
}

func (o TuningOptions) withDefaults() TuningOptions {
	if o.Permittivity == 0 {
		o.Permittivity = 1
	}
	if o.Budget == 0 {
		o.Budget = 5
	}
	return o
}

// TuningResult is the optimal range-separation point.
type TuningResult struct {
	Omega float64
	Alpha float64
	Error quantity.Quantity
}

// MinimizeKoopmanError searches the range-separation parameter omega (and
// optionally the short-range HF fraction alpha) minimizing the Koopman
// error. Each trial omega gets its own work directory under the task's.
type MinimizeKoopmanError struct {
	*workflow.Base
	eng  *engine.Engine
	io   engine.IO
	opts TuningOptions
}

// NewMinimizeKoopmanError builds the tuning task.
func NewMinimizeKoopmanError(eng *engine.Engine, io engine.IO, name string, opts TuningOptions, handlers ...workflow.Handler) *MinimizeKoopmanError {
	return &MinimizeKoopmanError{
		Base: workflow.NewBase(name, handlers...),
		eng:  eng,
		io:   io,
		opts: opts.withDefaults(),
	}
}

func (t *MinimizeKoopmanError) Run(ctx context.Context, in workflow.Inputs) (interface{}, error) {
	mol, err := moleculeFrom(in)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Name(), err)
	}
	return t.Compute(ctx, mol, settingsFrom(in))
}

// Compute runs the search and returns the optimum.
func (t *MinimizeKoopmanError) Compute(ctx context.Context, mol *chem.Molecule, settings *Settings) (*TuningResult, error) {
	opts := t.opts
	eps := opts.Permittivity

	objective := func(x []float64) (float64, error) {
		omega := x[0]
		alpha := 0.0
		if opts.Alpha != nil {
			alpha = *opts.Alpha
		} else {
			alpha = x[1]
		}

		j, err := t.evaluate(ctx, mol, settings, omega, alpha, eps)
		if err != nil {
			return 0, err
		}
		// the optimizer maximizes; minimize the error by negating it
		return -j.Value, nil
	}

	maximizer := optimize.NewMaxLIPOTR(objective, optimize.WithSeed(opts.Seed))

	var lower, upper []float64
	if opts.Alpha != nil {
		lower, upper = []float64{1e-3}, []float64{1}
	} else {
		lower, upper = []float64{1e-3, 0}, []float64{1, 1 / eps}
	}

	res, err := maximizer.Run(ctx, lower, upper, opts.Budget, 0)
	if err != nil {
		return nil, err
	}

	result := &TuningResult{
		Omega: res.X[0],
		Error: quantity.New(-res.Value, quantity.EV),
	}
	if opts.Alpha != nil {
		result.Alpha = *opts.Alpha
	} else {
		result.Alpha = res.X[1]
	}

	logger.Op.WithFields(map[string]interface{}{
		"task":  t.Name(),
		"omega": result.Omega,
		"alpha": result.Alpha,
		"error": result.Error.String(),
	}).Debug("Range-separation tuning finished")

	return result, nil
}

// evaluate computes the Koopman error at one (omega, alpha) point.
func (t *MinimizeKoopmanError) evaluate(ctx context.Context, mol *chem.Molecule, settings *Settings, omega, alpha, eps float64) (quantity.Quantity, error) {
	beta := 1/eps - alpha

	s := settings.Clone()
	s.SetDefault("rem", "basis", "3-21G")
	s.SetDefault("rem", "jobtype", "sp")
	s.SetDefault("rem", "exchange", "gen")
	s.SetDefault("rem", "lrc_dft", true)
	s.SetDefault("rem", "src_dft", 2)

	s.Set("rem", "hf_sr", int(math.Round(1000*alpha)))
	s.Set("rem", "hf_lr", int(1000/eps))
	s.SetXC(
		XCComponent{Type: "X", Name: "HF", Coefficient: alpha},
		XCComponent{Type: "X", Name: "wPBE", Coefficient: beta},
		XCComponent{Type: "X", Name: "PBE", Coefficient: 1 - alpha - beta},
		XCComponent{Type: "C", Name: "PBE", Coefficient: 1.0},
	)

	// engine omega values are thousandths
	omegaInt := int(math.Round(1000 * omega))
	s.Set("rem", "omega", omegaInt)
	s.Set("rem", "omega2", omegaInt)

	wd := filepath.Join(t.io.WorkDir, strconv.Itoa(omegaInt))
	ke := NewKoopmanError(
		t.eng,
		engine.NewIO("gs.in", "gs.out", wd),
		engine.NewIO("cation.in", "cation.out", wd),
		engine.NewIO("anion.in", "anion.out", wd),
		"koopman error",
	)

	return ke.Compute(ctx, mol, s)
}
