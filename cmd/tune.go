package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chemtools/qcflow/internal/chem"
	"github.com/chemtools/qcflow/internal/engine"
	"github.com/chemtools/qcflow/internal/engine/qchem"
	"github.com/chemtools/qcflow/internal/progress"
	"github.com/chemtools/qcflow/internal/utils"
	"github.com/chemtools/qcflow/internal/validation"
	"github.com/chemtools/qcflow/internal/workflow"
)

var (
	tuneBasis        string
	tuneCharge       int
	tuneMultiplicity int
	tuneAlpha        float64
	tunePermittivity float64
	tuneBudget       int
	tuneSeed         int64
)

var tuneCmd = &cobra.Command{
	Use:   "tune <geometry.xyz>",
	Short: "Tune range-separation parameters against Koopman's theorem",
	Long: `Searches the range-separation parameter omega of an LRC functional so
that the ionization potential matches the negated HOMO energy (and, when
the anion is bound, the electron affinity matches the negated LUMO).
Each trial omega runs neutral, cation and anion calculations in its own
subdirectory of the working directory.

Fixing --alpha searches omega alone; leaving it unset searches omega and
the short-range exact exchange fraction together.

Example:
qcflow tune water.xyz --exe qchem --basis 6-31G* --budget 20
qcflow tune dye.xyz --alpha 0.2 --permittivity 78.4 --budget 10
`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateTuneFlags,
	RunE:    runTune,
}

func init() {
	tuneCmd.Flags().StringVarP(&tuneBasis, "basis", "b", "3-21G", "Basis set")
	tuneCmd.Flags().IntVarP(&tuneCharge, "charge", "c", 0, "Total charge of the neutral reference")
	tuneCmd.Flags().IntVar(&tuneMultiplicity, "multiplicity", 1, "Spin multiplicity of the neutral reference")
	tuneCmd.Flags().Float64VarP(&tuneAlpha, "alpha", "a", -1, "Short-range exact exchange fraction; negative searches it with omega")
	tuneCmd.Flags().Float64VarP(&tunePermittivity, "permittivity", "e", 1, "Environment dielectric constant")
	tuneCmd.Flags().IntVar(&tuneBudget, "budget", 5, "Number of trial omega evaluations")
	tuneCmd.Flags().Int64Var(&tuneSeed, "seed", 0, "Random seed for the parameter search")
}

func validateTuneFlags(cmd *cobra.Command, args []string) error {
	if err := validateEngineFlags(); err != nil {
		return err
	}
	if err := validation.ValidateGeometryFile(args[0]); err != nil {
		return err
	}
	if tuneBasis == "" {
		return errors.New("--basis cannot be empty")
	}
	if err := validation.ValidateChargeState(tuneCharge, tuneMultiplicity); err != nil {
		return err
	}

	res := validation.CheckTuning(tuneBudget, tunePermittivity, pinnedAlpha())
	if !res.Valid {
		return errors.New(res.Reason)
	}
	return nil
}

// pinnedAlpha translates the flag convention: a negative value means alpha
// is searched, not pinned.
func pinnedAlpha() *float64 {
	if tuneAlpha < 0 {
		return nil
	}
	a := tuneAlpha
	return &a
}

func runTune(cmd *cobra.Command, args []string) error {
	mol, err := chem.ReadXYZFile(args[0])
	if err != nil {
		return err
	}
	mol.Charge = tuneCharge
	mol.Multiplicity = tuneMultiplicity

	settings := qchem.NewSettings()
	settings.Set("rem", "basis", tuneBasis)

	eng := engineFromFlags()
	io := engine.NewIO("tune.in", "tune.out", workDir)
	reporter := progress.NewReporter()

	opts := qchem.TuningOptions{
		Permittivity: tunePermittivity,
		Alpha:        pinnedAlpha(),
		Budget:       tuneBudget,
		Seed:         tuneSeed,
	}

	task := qchem.NewMinimizeKoopmanError(eng, io, "koopman tuning", opts, reporter)
	task.Requires(nil, map[string]workflow.Task{
		"molecule": workflow.NewInputTask("molecule", mol),
		"settings": workflow.NewInputTask("settings", settings),
	})

	results, err := workflow.New(task).Compute(cmd.Context())
	if err != nil {
		return err
	}

	tuning, ok := results["koopman tuning"].(*qchem.TuningResult)
	if !ok || tuning == nil {
		return errors.New("tuning produced no result")
	}

	table := utils.NewTableFormatter([]string{"Parameter", "Value", "Unit"})
	table.AddValueRow("omega", tuning.Omega)
	table.AddValueRow("alpha", tuning.Alpha)
	table.AddQuantityRow("Koopman error", tuning.Error)

	fmt.Println(utils.Success("Tuning finished", reporter.Summary()))
	fmt.Println(table.String())
	return nil
}
