package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGeometry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "water.xyz")
	xyz := "3\nwater\nO 0 0 0.1173\nH 0 0.7572 -0.4692\nH 0 -0.7572 -0.4692\n"
	require.NoError(t, os.WriteFile(path, []byte(xyz), 0o644))
	return path
}

func resetFlags() {
	executable = "sh" // resolvable on every test host
	processors = 0
	threads = 0
	scratchDir = ""
	setupScript = ""
	workDir = "."
	spBasis = "3-21G"
	spCharge = 0
	spMultiplicity = 1
	tuneBasis = "3-21G"
	tuneCharge = 0
	tuneMultiplicity = 1
	tuneAlpha = -1
	tunePermittivity = 1
	tuneBudget = 5
}

func TestValidateSPFlags(t *testing.T) {
	resetFlags()
	geometry := writeGeometry(t)

	assert.NoError(t, validateSPFlags(spCmd, []string{geometry}))

	assert.Error(t, validateSPFlags(spCmd, []string{geometry + ".missing"}))

	spBasis = ""
	assert.Error(t, validateSPFlags(spCmd, []string{geometry}))
	spBasis = "3-21G"

	spMultiplicity = 0
	assert.Error(t, validateSPFlags(spCmd, []string{geometry}))
	spMultiplicity = 1

	processors = -1
	assert.Error(t, validateSPFlags(spCmd, []string{geometry}))
	processors = 0

	executable = ""
	assert.Error(t, validateSPFlags(spCmd, []string{geometry}))
}

func TestValidateTuneFlags(t *testing.T) {
	resetFlags()
	geometry := writeGeometry(t)

	assert.NoError(t, validateTuneFlags(tuneCmd, []string{geometry}))

	tuneBudget = 0
	assert.Error(t, validateTuneFlags(tuneCmd, []string{geometry}))
	tuneBudget = 5

	tunePermittivity = 0.5
	assert.Error(t, validateTuneFlags(tuneCmd, []string{geometry}))
	tunePermittivity = 1

	tuneAlpha = 1.5
	assert.Error(t, validateTuneFlags(tuneCmd, []string{geometry}))
}

func TestPinnedAlpha(t *testing.T) {
	resetFlags()

	assert.Nil(t, pinnedAlpha())

	tuneAlpha = 0.25
	a := pinnedAlpha()
	require.NotNil(t, a)
	assert.InDelta(t, 0.25, *a, 1e-12)

	tuneAlpha = 0
	a = pinnedAlpha()
	require.NotNil(t, a)
	assert.Zero(t, *a)
}
