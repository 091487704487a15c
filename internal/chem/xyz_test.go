package chem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterXYZ = `3
water
O  0.0000  0.0000  0.1173
H  0.0000  0.7572 -0.4692
H  0.0000 -0.7572 -0.4692
`

func TestParseXYZ(t *testing.T) {
	mol, err := ParseXYZ(waterXYZ)

	require.NoError(t, err)
	require.Equal(t, 3, mol.Structure.NumAtoms())
	assert.Equal(t, "O", mol.Structure.Atoms[0].Symbol)
	assert.InDelta(t, -0.4692, mol.Structure.Atoms[2].Position[2], 1e-12)
	assert.Equal(t, 0, mol.Charge)
	assert.Equal(t, 1, mol.Multiplicity)
}

func TestParseXYZ_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"bad count", "x\ncomment\n"},
		{"too few rows", "2\ncomment\nH 0 0 0\n"},
		{"bad coordinates", "1\ncomment\nH a b c\n"},
		{"unknown element", "1\ncomment\nQq 0 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseXYZ(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestReadXYZFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.xyz")
	require.NoError(t, os.WriteFile(path, []byte(waterXYZ), 0o644))

	mol, err := ReadXYZFile(path)

	require.NoError(t, err)
	assert.Equal(t, 3, mol.Structure.NumAtoms())

	_, err = ReadXYZFile(filepath.Join(t.TempDir(), "missing.xyz"))
	assert.Error(t, err)
}
