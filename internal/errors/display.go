package errors

import (
	"fmt"
	"strings"
)

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if calcErr, ok := err.(*CalcError); ok {
		return fmt.Sprintf("%s-%s: %s", calcErr.Category, calcErr.Code, calcErr.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	calcErr, ok := err.(*CalcError)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\n%s Error [%s-%s]\n", calcErr.Category, calcErr.Category, calcErr.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", calcErr.Message))

	if calcErr.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", calcErr.Operation))
	}

	if len(calcErr.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range sortedKeys(calcErr.Context) {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, calcErr.Context[key]))
		}
	}

	if len(calcErr.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range calcErr.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if calcErr.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", calcErr.OriginalError))
	}

	return sb.String()
}

// IsUserError determines if an error is due to user input/configuration
func IsUserError(err error) bool {
	if calcErr, ok := err.(*CalcError); ok {
		return calcErr.Category == ErrorCategoryValidation ||
			calcErr.Category == ErrorCategoryConfiguration
	}
	return false
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	if calcErr, ok := err.(*CalcError); ok {
		return fmt.Sprintf("%s-%s", calcErr.Category, calcErr.Code)
	}
	return "UNKNOWN"
}
