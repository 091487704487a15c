package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryValidation represents precondition and input validation errors
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	// ErrorCategoryEngine represents external engine invocation errors
	ErrorCategoryEngine ErrorCategory = "ENGINE"
	// ErrorCategoryParse represents engine output parsing errors
	ErrorCategoryParse ErrorCategory = "PARSE"
	// ErrorCategoryWorkflow represents task graph construction/execution errors
	ErrorCategoryWorkflow ErrorCategory = "WORKFLOW"
	// ErrorCategoryOptimization represents global search errors
	ErrorCategoryOptimization ErrorCategory = "OPTIMIZATION"
	// ErrorCategoryConfiguration represents configuration errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
)

// Common error codes
const (
	CodeBadBounds      = "001"
	CodeBadSettings    = "002"
	CodeBadInput       = "003"
	CodeExecMissing    = "001"
	CodeExecFailed     = "002"
	CodeMarkerMissing  = "001"
	CodeMalformedValue = "002"
	CodeCycle          = "001"
	CodeDuplicateName  = "002"
	CodeTaskFailed     = "003"
	CodeBudget         = "001"
)

// CalcError represents a structured error with context and troubleshooting information
type CalcError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *CalcError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nOperation: %s", e.Operation))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nContext:")
		for _, key := range sortedKeys(e.Context) {
			sb.WriteString(fmt.Sprintf("\n  %s: %v", key, e.Context[key]))
		}
	}

	if len(e.Troubleshooting) > 0 {
		sb.WriteString("\nTroubleshooting:")
		for i, step := range e.Troubleshooting {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nUnderlying error: %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *CalcError) Unwrap() error {
	return e.OriginalError
}

// New creates a new calculation error with the specified parameters
func New(category ErrorCategory, code, message, operation string) *CalcError {
	return &CalcError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *CalcError) WithContext(key string, value interface{}) *CalcError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *CalcError) WithTroubleshooting(steps ...string) *CalcError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the calculation error
func (e *CalcError) WithOriginalError(err error) *CalcError {
	e.OriginalError = err
	return e
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Domain error constructors

// NewBoundsError creates an error for invalid optimizer search bounds
func NewBoundsError(dim int, lower, upper float64) *CalcError {
	return New(ErrorCategoryValidation, CodeBadBounds,
		fmt.Sprintf("Lower bound %g exceeds upper bound %g in dimension %d", lower, upper, dim),
		"Global search bounds check").
		WithContext("dimension", dim).
		WithContext("lower", lower).
		WithContext("upper", upper).
		WithTroubleshooting(
			"Ensure every lower bound is at most the matching upper bound",
			"Check the order of the bounds arguments at the call site",
		)
}

// NewExecMissingError creates an error for an engine executable that cannot be started
func NewExecMissingError(executable string, originalErr error) *CalcError {
	return New(ErrorCategoryEngine, CodeExecMissing,
		fmt.Sprintf("Engine executable '%s' could not be started", executable),
		"Engine subprocess launch").
		WithContext("executable", executable).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Verify the executable name or path is correct",
			"Check that the engine is installed and on PATH",
			"If the engine needs a setup script, pass it via the engine configuration",
		)
}

// NewExecFailedError creates an error for a nonzero engine exit
func NewExecFailedError(executable string, originalErr error) *CalcError {
	return New(ErrorCategoryEngine, CodeExecFailed,
		fmt.Sprintf("Engine '%s' exited with an error", executable),
		"Engine subprocess execution").
		WithContext("executable", executable).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Inspect the engine output file in the task's work directory",
			"Check the input deck for unsupported keyword combinations",
			"Verify the scratch directory is writable and has free space",
		)
}

// NewParseError creates an error for required markers absent from engine output
func NewParseError(marker, outputPath string) *CalcError {
	return New(ErrorCategoryParse, CodeMarkerMissing,
		fmt.Sprintf("Expected marker '%s' not found in engine output", marker),
		"Engine output parsing").
		WithContext("marker", marker).
		WithContext("output", outputPath).
		WithTroubleshooting(
			"Check whether the engine run completed; the output may be truncated",
			"Confirm the job type in the input deck produces this section",
		)
}

// NewCycleError creates an error for a cyclic task graph declaration
func NewCycleError(workflow string) *CalcError {
	return New(ErrorCategoryWorkflow, CodeCycle,
		"Task requirements form a cycle",
		"Workflow graph validation").
		WithContext("workflow", workflow).
		WithTroubleshooting(
			"Review the Requires declarations for a task that transitively requires itself",
		)
}

// NewDuplicateNameError creates an error for colliding or empty task names
func NewDuplicateNameError(name string) *CalcError {
	message := fmt.Sprintf("Task name '%s' is used by more than one task", name)
	if name == "" {
		message = "Task has an empty name"
	}
	return New(ErrorCategoryWorkflow, CodeDuplicateName, message,
		"Workflow graph validation").
		WithContext("name", name).
		WithTroubleshooting(
			"Give every task in a workflow a unique, non-empty name",
		)
}
