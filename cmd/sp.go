package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chemtools/qcflow/internal/chem"
	"github.com/chemtools/qcflow/internal/engine"
	"github.com/chemtools/qcflow/internal/engine/qchem"
	"github.com/chemtools/qcflow/internal/progress"
	"github.com/chemtools/qcflow/internal/quantity"
	"github.com/chemtools/qcflow/internal/utils"
	"github.com/chemtools/qcflow/internal/validation"
	"github.com/chemtools/qcflow/internal/workflow"
)

var (
	spBasis        string
	spMethod       string
	spCharge       int
	spMultiplicity int
	spFrontier     bool
)

var spCmd = &cobra.Command{
	Use:   "sp <geometry.xyz>",
	Short: "Run a single point energy calculation",
	Long: `Runs a single point SCF calculation on the given XYZ geometry and reports
the converged total energy. With --frontier the HOMO and LUMO orbital
energies are scraped and reported as well.

Example:
qcflow sp water.xyz --exe qchem --basis 6-31G* --method b3lyp
qcflow sp anion.xyz --charge -1 --multiplicity 2 --frontier
`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateSPFlags,
	RunE:    runSinglePoint,
}

func init() {
	spCmd.Flags().StringVarP(&spBasis, "basis", "b", "3-21G", "Basis set")
	spCmd.Flags().StringVarP(&spMethod, "method", "m", "", "DFT method (empty runs Hartree-Fock)")
	spCmd.Flags().IntVarP(&spCharge, "charge", "c", 0, "Total charge")
	spCmd.Flags().IntVar(&spMultiplicity, "multiplicity", 1, "Spin multiplicity")
	spCmd.Flags().BoolVar(&spFrontier, "frontier", false, "Also report HOMO and LUMO energies")
}

func validateSPFlags(cmd *cobra.Command, args []string) error {
	if err := validateEngineFlags(); err != nil {
		return err
	}
	if err := validation.ValidateGeometryFile(args[0]); err != nil {
		return err
	}
	if spBasis == "" {
		return errors.New("--basis cannot be empty")
	}
	return validation.ValidateChargeState(spCharge, spMultiplicity)
}

func runSinglePoint(cmd *cobra.Command, args []string) error {
	mol, err := chem.ReadXYZFile(args[0])
	if err != nil {
		return err
	}
	mol.Charge = spCharge
	mol.Multiplicity = spMultiplicity

	settings := qchem.NewSettings()
	settings.Set("rem", "basis", spBasis)
	if spMethod != "" {
		settings.Set("rem", "method", spMethod)
	}

	eng := engineFromFlags()
	io := engine.NewIO("sp.in", "sp.out", workDir)
	reporter := progress.NewReporter()

	deps := map[string]workflow.Task{
		"molecule": workflow.NewInputTask("molecule", mol),
		"settings": workflow.NewInputTask("settings", settings),
	}

	const taskName = "single point"
	var root workflow.Task
	if spFrontier {
		task := qchem.NewSinglePointFrontier(eng, io, taskName, reporter)
		task.Requires(nil, deps)
		root = task
	} else {
		task := qchem.NewSinglePoint(eng, io, taskName, reporter)
		task.Requires(nil, deps)
		root = task
	}

	results, err := workflow.New(root).Compute(cmd.Context())
	if err != nil {
		return err
	}

	table := utils.NewTableFormatter([]string{"Property", "Value", "Unit"})
	if spFrontier {
		frontier, _ := results[taskName].(*qchem.FrontierResult)
		if frontier == nil {
			fmt.Println(utils.Warning("Calculation did not converge",
				"No orbital energies found for "+args[0]))
			return nil
		}
		table.AddQuantityRow("Total energy", frontier.Energy)
		table.AddQuantityRow("HOMO", frontier.HOMO)
		table.AddQuantityRow("LUMO", frontier.LUMO)
	} else {
		energy, _ := results[taskName].(*quantity.Quantity)
		if energy == nil {
			fmt.Println(utils.Warning("Calculation did not converge",
				"No SCF energy found for "+args[0]))
			return nil
		}
		table.AddQuantityRow("Total energy", *energy)
	}

	fmt.Println(utils.Success("Single point finished", reporter.Summary()))
	fmt.Println(table.String())
	return nil
}
