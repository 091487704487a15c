// Package chem holds the molecular value objects the engine layer produces
// and consumes: atoms and structures, molecules with charge and spin state,
// excitation spectra, polarizability tensors, and dipoles.
package chem

import "fmt"

// elementSymbols maps atomic number to element symbol, H through Rn.
var elementSymbols = []string{
	"", "H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for z, sym := range elementSymbols {
		if sym != "" {
			m[sym] = z
		}
	}
	return m
}()

// Atom is an element at a cartesian position in angstrom.
type Atom struct {
	Symbol   string
	Number   int
	Position [3]float64
}

// NewAtom builds an atom from an element symbol.
func NewAtom(symbol string, x, y, z float64) (Atom, error) {
	n, ok := atomicNumbers[symbol]
	if !ok {
		return Atom{}, fmt.Errorf("unknown element symbol %q", symbol)
	}
	return Atom{Symbol: symbol, Number: n, Position: [3]float64{x, y, z}}, nil
}

// AtomFromNumber builds an atom from an atomic number.
func AtomFromNumber(number int, x, y, z float64) (Atom, error) {
	if number < 1 || number >= len(elementSymbols) {
		return Atom{}, fmt.Errorf("atomic number %d out of range", number)
	}
	return Atom{Symbol: elementSymbols[number], Number: number, Position: [3]float64{x, y, z}}, nil
}

// Structure is an ordered collection of atoms.
type Structure struct {
	Atoms []Atom
}

// NewStructure builds a structure from atoms in order.
func NewStructure(atoms ...Atom) Structure {
	return Structure{Atoms: atoms}
}

// NumAtoms returns the atom count.
func (s Structure) NumAtoms() int {
	return len(s.Atoms)
}
