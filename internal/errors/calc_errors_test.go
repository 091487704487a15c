package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcError_ErrorFormat(t *testing.T) {
	err := New(ErrorCategoryParse, CodeMarkerMissing, "marker missing", "parsing").
		WithContext("output", "job.out").
		WithTroubleshooting("check the output file")

	msg := err.Error()

	assert.Contains(t, msg, "PARSE-001: marker missing")
	assert.Contains(t, msg, "Operation: parsing")
	assert.Contains(t, msg, "output: job.out")
	assert.Contains(t, msg, "1. check the output file")
}

func TestCalcError_Unwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	err := NewExecFailedError("qchem", inner)

	assert.ErrorIs(t, err, inner)
}

func TestNewBoundsError(t *testing.T) {
	err := NewBoundsError(1, 5, 2)

	assert.Equal(t, ErrorCategoryValidation, err.Category)
	assert.Contains(t, err.Error(), "dimension 1")
	assert.True(t, IsUserError(err))
}

func TestNewDuplicateNameError_EmptyName(t *testing.T) {
	err := NewDuplicateNameError("")
	assert.Contains(t, err.Message, "empty name")

	err = NewDuplicateNameError("gs")
	assert.Contains(t, err.Message, "'gs'")
}

func TestDisplayErrorSummary(t *testing.T) {
	calcErr := NewCycleError("wf")
	assert.Equal(t, "WORKFLOW-001: Task requirements form a cycle", DisplayErrorSummary(calcErr))

	plain := errors.New("plain failure")
	assert.Equal(t, "plain failure", DisplayErrorSummary(plain))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "ENGINE-001", GetErrorCode(NewExecMissingError("qchem", nil)))
	assert.Equal(t, "UNKNOWN", GetErrorCode(errors.New("x")))
}

func TestFormatForCLI_PlainError(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))
	assert.Equal(t, "\nError: boom\n", out)
}
