package chem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemtools/qcflow/internal/quantity"
)

func TestNewAtom(t *testing.T) {
	a, err := NewAtom("O", 0, 0, 0.1173)

	require.NoError(t, err)
	assert.Equal(t, 8, a.Number)
	assert.Equal(t, "O", a.Symbol)
	assert.Equal(t, 0.1173, a.Position[2])
}

func TestNewAtom_UnknownSymbol(t *testing.T) {
	_, err := NewAtom("Xx", 0, 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Xx")
}

func TestAtomFromNumber(t *testing.T) {
	a, err := AtomFromNumber(6, 1, 2, 3)

	require.NoError(t, err)
	assert.Equal(t, "C", a.Symbol)

	_, err = AtomFromNumber(0, 0, 0, 0)
	assert.Error(t, err)
	_, err = AtomFromNumber(200, 0, 0, 0)
	assert.Error(t, err)
}

func TestMolecule_CationAnion(t *testing.T) {
	o, err := NewAtom("O", 0, 0, 0)
	require.NoError(t, err)
	m := NewMolecule(NewStructure(o))

	cation := m.Cation()
	anion := m.Anion()

	assert.Equal(t, 1, cation.Charge)
	assert.Equal(t, 2, cation.Multiplicity, "neutral singlet ionizes to a doublet")
	assert.Equal(t, -1, anion.Charge)
	assert.Equal(t, 2, anion.Multiplicity)

	// originals untouched
	assert.Equal(t, 0, m.Charge)
	assert.Equal(t, 1, m.Multiplicity)

	// doublet flips back to singlet
	radical := NewMolecule(NewStructure(o))
	radical.Multiplicity = 2
	assert.Equal(t, 1, radical.Cation().Multiplicity)
}

func TestMolecule_DerivedCopiesDoNotShareAtoms(t *testing.T) {
	h, err := NewAtom("H", 0, 0, 0)
	require.NoError(t, err)
	m := NewMolecule(NewStructure(h))

	c := m.Cation()
	c.Structure.Atoms[0].Position[0] = 9

	assert.Equal(t, 0.0, m.Structure.Atoms[0].Position[0])
}

func TestExcitationSpectrum_Broaden(t *testing.T) {
	spectrum := NewExcitationSpectrum(
		Excitation{Energy: quantity.New(3.0, quantity.EV), OscillatorStrength: 0.5},
		Excitation{Energy: quantity.New(5.0, quantity.EV), OscillatorStrength: 1.0},
	)

	profile := spectrum.Broaden(quantity.New(0.2, quantity.EV))

	// At a stick, the gaussian contributes its full strength and the far
	// stick contributes essentially nothing.
	at3, err := profile(quantity.New(3.0, quantity.EV))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, at3, 1e-6)

	at5, err := profile(quantity.New(5.0, quantity.EV))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, at5, 1e-6)

	// One fwhm off a lone stick, the profile has fallen by exp(-2 ln 2).
	at32, err := profile(quantity.New(3.2, quantity.EV))
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Exp(-2*math.Ln2), at32, 1e-6)
}

func TestPolarizability_Isotropic(t *testing.T) {
	p := NewPolarizability([9]float64{
		3, 0, 0,
		0, 6, 0,
		0, 0, 9,
	})

	iso := p.Isotropic()

	assert.InDelta(t, 6.0, iso.Value, 1e-12)
	assert.Equal(t, quantity.AuVolume.Dim, iso.Unit.Dim)
}

func TestPolarizability_Anisotropy(t *testing.T) {
	// Isotropic tensor has zero anisotropy.
	p := NewPolarizability([9]float64{
		2, 0, 0,
		0, 2, 0,
		0, 0, 2,
	})
	assert.InDelta(t, 0.0, p.Anisotropy().Value, 1e-12)

	// Diagonal (1, 2, 3): tr(T^2) = 14, iso = 2, sqrt(14 - 12) = sqrt(2).
	q := NewPolarizability([9]float64{
		1, 0, 0,
		0, 2, 0,
		0, 0, 3,
	})
	assert.InDelta(t, math.Sqrt2, q.Anisotropy().Value, 1e-12)
}

func TestPolarizability_Eigenvalues(t *testing.T) {
	p := NewPolarizability([9]float64{
		5, 0, 0,
		0, 1, 0,
		0, 0, 3,
	})

	eig, err := p.Eigenvalues()

	require.NoError(t, err)
	require.Len(t, eig, 3)
	assert.InDelta(t, 1.0, eig[0].Value, 1e-10)
	assert.InDelta(t, 3.0, eig[1].Value, 1e-10)
	assert.InDelta(t, 5.0, eig[2].Value, 1e-10)
}

func TestDipole_Norm(t *testing.T) {
	d := Dipole{Moment: [3]float64{3, 4, 0}, Unit: quantity.Debye}

	assert.InDelta(t, 5.0, d.Norm().Value, 1e-12)
}
