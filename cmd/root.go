package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chemtools/qcflow/internal/engine"
	"github.com/chemtools/qcflow/internal/logger"
	"github.com/chemtools/qcflow/internal/validation"
)

var (
	debug    bool
	verbose  bool
	jsonLogs bool
	quiet    bool
	version  = "v0.1.0"

	executable  string
	processors  int
	threads     int
	scratchDir  string
	setupScript string
	workDir     string

	rootCmd = &cobra.Command{
		Use:   "qcflow",
		Short: "A CLI tool for running quantum chemistry workflows",
		Long:  `A CLI tool for driving Q-Chem calculations: renders input decks, launches the engine in isolated scratch directories, and scrapes energies, orbitals and spectra from the output.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(verbose || debug, jsonLogs, quiet)
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version
	// main formats errors through the error display helper
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.PersistentFlags().StringVar(&executable, "exe", "qchem", "Engine executable name or path")
	rootCmd.PersistentFlags().IntVar(&processors, "np", 0, "Number of processors (0 lets the engine decide)")
	rootCmd.PersistentFlags().IntVar(&threads, "nt", 0, "Number of threads (0 lets the engine decide)")
	rootCmd.PersistentFlags().StringVar(&scratchDir, "scratch", "", "Scratch root for engine runs (optional)")
	rootCmd.PersistentFlags().StringVar(&setupScript, "setup-script", "", "Shell script sourced to build the engine environment (optional)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "w", ".", "Directory for input and output files")

	rootCmd.AddCommand(spCmd)
	rootCmd.AddCommand(tuneCmd)
}

// validateEngineFlags checks the persistent engine flags shared by every
// calculation command.
func validateEngineFlags() error {
	if err := validation.ValidateExecutable(executable); err != nil {
		return err
	}
	if err := validation.ValidateParallelism(processors, threads); err != nil {
		return err
	}
	return validation.ValidateSetupScript(setupScript)
}

// engineFromFlags builds the engine the persistent flags describe.
func engineFromFlags() *engine.Engine {
	opts := []engine.Option{
		engine.WithProcessors(processors),
		engine.WithThreads(threads),
	}
	if scratchDir != "" {
		opts = append(opts, engine.WithScratchDir(scratchDir))
	}
	if setupScript != "" {
		opts = append(opts, engine.WithSetupScript(setupScript))
	}
	return engine.New(executable, opts...)
}
