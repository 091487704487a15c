package chem

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseXYZ parses XYZ-format text: an atom count line, a comment line, then
// one "symbol x y z" row per atom (coordinates in angstrom).
func ParseXYZ(text string) (*Molecule, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("xyz input too short")
	}

	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("xyz atom count line: %w", err)
	}
	if len(lines) < 2+count {
		return nil, fmt.Errorf("xyz input declares %d atoms but has %d rows", count, len(lines)-2)
	}

	atoms := make([]Atom, 0, count)
	for _, line := range lines[2 : 2+count] {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("malformed xyz row %q", line)
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		z, errZ := strconv.ParseFloat(fields[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("malformed coordinates in xyz row %q", line)
		}
		atom, err := NewAtom(fields[0], x, y, z)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
	}

	return NewMolecule(NewStructure(atoms...)), nil
}

// ReadXYZFile loads a molecule from an XYZ file.
func ReadXYZFile(path string) (*Molecule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading xyz file %s: %w", path, err)
	}
	mol, err := ParseXYZ(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return mol, nil
}
