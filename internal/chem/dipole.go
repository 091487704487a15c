package chem

import (
	"gonum.org/v1/gonum/floats"

	"github.com/chemtools/qcflow/internal/quantity"
)

// Dipole is a dipole moment vector with its unit.
type Dipole struct {
	Moment [3]float64
	Unit   quantity.Unit
}

// Norm returns the euclidean magnitude of the moment.
func (d Dipole) Norm() quantity.Quantity {
	return quantity.New(floats.Norm(d.Moment[:], 2), d.Unit)
}
