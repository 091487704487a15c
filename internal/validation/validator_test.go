package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExecutable(t *testing.T) {
	assert.Error(t, ValidateExecutable(""))
	assert.Error(t, ValidateExecutable("   "))
	assert.Error(t, ValidateExecutable("/no/such/engine/binary"))
	assert.Error(t, ValidateExecutable("definitely-not-on-path-qwx"))

	// a bare name that every test host resolves
	assert.NoError(t, ValidateExecutable("sh"))

	path := filepath.Join(t.TempDir(), "qchem")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	assert.NoError(t, ValidateExecutable(path))
}

func TestValidateParallelism(t *testing.T) {
	assert.NoError(t, ValidateParallelism(0, 0))
	assert.NoError(t, ValidateParallelism(4, 8))
	assert.Error(t, ValidateParallelism(-1, 0))
	assert.Error(t, ValidateParallelism(0, -2))
}

func TestValidateChargeState(t *testing.T) {
	assert.NoError(t, ValidateChargeState(0, 1))
	assert.NoError(t, ValidateChargeState(1, 2))
	assert.NoError(t, ValidateChargeState(-1, 2))
	assert.Error(t, ValidateChargeState(0, 0))
	assert.Error(t, ValidateChargeState(0, -1))
}

func TestValidateGeometryFile(t *testing.T) {
	assert.Error(t, ValidateGeometryFile(""))
	assert.Error(t, ValidateGeometryFile(filepath.Join(t.TempDir(), "missing.xyz")))

	dir := t.TempDir()
	assert.Error(t, ValidateGeometryFile(dir))

	path := filepath.Join(dir, "water.xyz")
	require.NoError(t, os.WriteFile(path, []byte("3\nwater\n"), 0o644))
	assert.NoError(t, ValidateGeometryFile(path))
}

func TestValidateSetupScript(t *testing.T) {
	assert.NoError(t, ValidateSetupScript(""))
	assert.Error(t, ValidateSetupScript(filepath.Join(t.TempDir(), "missing.sh")))

	dir := t.TempDir()
	assert.Error(t, ValidateSetupScript(dir))

	path := filepath.Join(dir, "setup.sh")
	require.NoError(t, os.WriteFile(path, []byte("export QC=/opt/qchem\n"), 0o644))
	assert.NoError(t, ValidateSetupScript(path))
}

func TestValidateBudget(t *testing.T) {
	assert.Error(t, ValidateBudget(0))
	assert.Error(t, ValidateBudget(-5))
	assert.NoError(t, ValidateBudget(1))
	assert.NoError(t, ValidateBudget(100))
}

func TestValidatePermittivity(t *testing.T) {
	assert.Error(t, ValidatePermittivity(0))
	assert.Error(t, ValidatePermittivity(0.5))
	assert.NoError(t, ValidatePermittivity(1))
	assert.NoError(t, ValidatePermittivity(78.4))
}

func TestValidateAlpha(t *testing.T) {
	assert.Error(t, ValidateAlpha(-0.1))
	assert.Error(t, ValidateAlpha(1.1))
	assert.NoError(t, ValidateAlpha(0))
	assert.NoError(t, ValidateAlpha(0.2))
	assert.NoError(t, ValidateAlpha(1))
}

func TestCheckTuning(t *testing.T) {
	alpha := 0.2
	res := CheckTuning(10, 78.4, &alpha)
	assert.True(t, res.Valid)

	res = CheckTuning(10, 78.4, nil)
	assert.True(t, res.Valid)

	bad := 1.5
	res = CheckTuning(0, 0.5, &bad)
	require.False(t, res.Valid)
	assert.Contains(t, res.Reason, "budget")
	assert.Contains(t, res.Reason, "permittivity")
	assert.Contains(t, res.Reason, "exchange fraction")
}
