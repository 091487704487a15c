package chem

import "github.com/chemtools/qcflow/internal/quantity"

// Molecule is a structure with a net charge and spin multiplicity, plus the
// computed properties engine tasks attach to it.
type Molecule struct {
	Structure    Structure
	Charge       int
	Multiplicity int

	// Set by engine tasks that enrich the molecule in place.
	TotalEnergy    *quantity.Quantity
	Excitations    *ExcitationSpectrum
	Polarizability *Polarizability
	Volume         *quantity.Quantity
}

// NewMolecule builds a neutral singlet molecule over the given structure.
func NewMolecule(s Structure) *Molecule {
	return &Molecule{Structure: s, Charge: 0, Multiplicity: 1}
}

// Cation returns a copy with one electron removed: charge up by one, spin
// multiplicity flipped between singlet and doublet.
func (m *Molecule) Cation() *Molecule {
	c := m.copyBare()
	c.Charge++
	c.Multiplicity = m.Multiplicity%2 + 1
	return c
}

// Anion returns a copy with one electron added.
func (m *Molecule) Anion() *Molecule {
	a := m.copyBare()
	a.Charge--
	a.Multiplicity = m.Multiplicity%2 + 1
	return a
}

// copyBare clones structure and state but not computed properties.
func (m *Molecule) copyBare() *Molecule {
	atoms := make([]Atom, len(m.Structure.Atoms))
	copy(atoms, m.Structure.Atoms)
	return &Molecule{
		Structure:    Structure{Atoms: atoms},
		Charge:       m.Charge,
		Multiplicity: m.Multiplicity,
	}
}
