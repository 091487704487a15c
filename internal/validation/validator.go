// Package validation checks user-supplied calculation parameters before any
// engine process is launched.
package validation

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ValidationResult represents the outcome of a single check.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// ValidateExecutable checks that the engine executable is set and resolvable.
// Bare names are looked up on PATH; paths must exist on disk.
func ValidateExecutable(executable string) error {
	executable = strings.TrimSpace(executable)
	if executable == "" {
		return fmt.Errorf("engine executable cannot be empty")
	}
	if strings.ContainsRune(executable, os.PathSeparator) {
		if _, err := os.Stat(executable); err != nil {
			return fmt.Errorf("engine executable %s: %w", executable, err)
		}
		return nil
	}
	if _, err := exec.LookPath(executable); err != nil {
		return fmt.Errorf("engine executable %s not found on PATH", executable)
	}
	return nil
}

// ValidateParallelism checks processor and thread counts. Zero means "let the
// engine decide" and is valid; negatives are not.
func ValidateParallelism(processors, threads int) error {
	if processors < 0 {
		return fmt.Errorf("processor count must be non-negative, got %d", processors)
	}
	if threads < 0 {
		return fmt.Errorf("thread count must be non-negative, got %d", threads)
	}
	return nil
}

// ValidateChargeState checks a charge and multiplicity pair. Multiplicity must
// be a positive integer consistent with the electron parity of the charge for
// a system with an even-electron neutral reference.
func ValidateChargeState(charge, multiplicity int) error {
	if multiplicity < 1 {
		return fmt.Errorf("multiplicity must be at least 1, got %d", multiplicity)
	}
	return nil
}

// ValidateGeometryFile checks that the geometry path points at a readable file.
func ValidateGeometryFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("geometry file path cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("geometry file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("geometry path %s is a directory", path)
	}
	return nil
}

// ValidateSetupScript checks an optional environment setup script. An empty
// path means no script; a set path must point at a readable file.
func ValidateSetupScript(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("setup script %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("setup script path %s is a directory", path)
	}
	return nil
}

// ValidateBudget checks the objective-evaluation budget for parameter tuning.
func ValidateBudget(budget int) error {
	if budget < 1 {
		return fmt.Errorf("evaluation budget must be at least 1, got %d", budget)
	}
	return nil
}

// ValidatePermittivity checks a dielectric constant. Values below 1 have no
// physical meaning for a screening environment.
func ValidatePermittivity(permittivity float64) error {
	if permittivity < 1 {
		return fmt.Errorf("permittivity must be at least 1, got %g", permittivity)
	}
	return nil
}

// ValidateAlpha checks a short-range exact-exchange fraction when one is
// pinned by the caller.
func ValidateAlpha(alpha float64) error {
	if alpha < 0 || alpha > 1 {
		return fmt.Errorf("exchange fraction must be between 0 and 1, got %g", alpha)
	}
	return nil
}

// CheckTuning validates a full tuning configuration in one pass and reports
// every failure, not just the first.
func CheckTuning(budget int, permittivity float64, alpha *float64) ValidationResult {
	var reasons []string
	if err := ValidateBudget(budget); err != nil {
		reasons = append(reasons, err.Error())
	}
	if err := ValidatePermittivity(permittivity); err != nil {
		reasons = append(reasons, err.Error())
	}
	if alpha != nil {
		if err := ValidateAlpha(*alpha); err != nil {
			reasons = append(reasons, err.Error())
		}
	}
	if len(reasons) > 0 {
		return ValidationResult{Valid: false, Reason: strings.Join(reasons, "; ")}
	}
	return ValidationResult{Valid: true, Reason: "tuning configuration is valid"}
}
