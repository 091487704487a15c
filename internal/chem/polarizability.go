package chem

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/chemtools/qcflow/internal/memo"
	"github.com/chemtools/qcflow/internal/quantity"
)

// Polarizability wraps the 3x3 polarizability tensor in atomic volume units
// (bohr^3). Derived scalars are computed lazily and cached.
type Polarizability struct {
	tensor  *mat.Dense
	scalars *memo.Cache[string, float64]
	eig     []quantity.Quantity
}

// NewPolarizability builds a polarizability from a row-major 3x3 tensor in
// atomic units.
func NewPolarizability(tensor [9]float64) *Polarizability {
	return &Polarizability{
		tensor:  mat.NewDense(3, 3, tensor[:]),
		scalars: memo.New[string, float64](),
	}
}

// Tensor returns the underlying tensor.
func (p *Polarizability) Tensor() mat.Matrix {
	return p.tensor
}

// Isotropic is one third of the tensor trace.
func (p *Polarizability) Isotropic() quantity.Quantity {
	v, _, _ := p.scalars.GetOrCompute("isotropic", func() (float64, error) {
		return mat.Trace(p.tensor) / 3, nil
	})
	return quantity.New(v, quantity.AuVolume)
}

// Anisotropy is sqrt(tr(T*T) - 3*isotropic^2).
func (p *Polarizability) Anisotropy() quantity.Quantity {
	v, _, _ := p.scalars.GetOrCompute("anisotropy", func() (float64, error) {
		var sq mat.Dense
		sq.Mul(p.tensor, p.tensor)
		iso := mat.Trace(p.tensor) / 3
		d := mat.Trace(&sq) - 3*iso*iso
		if d < 0 {
			// roundoff below zero for near-isotropic tensors
			d = 0
		}
		return math.Sqrt(d), nil
	})
	return quantity.New(v, quantity.AuVolume)
}

// Eigenvalues returns the tensor eigenvalues in ascending order of their
// real parts.
func (p *Polarizability) Eigenvalues() ([]quantity.Quantity, error) {
	if p.eig == nil {
		var e mat.Eigen
		if ok := e.Factorize(p.tensor, mat.EigenNone); !ok {
			return nil, fmt.Errorf("polarizability tensor eigendecomposition failed")
		}
		vals := e.Values(nil)
		re := make([]float64, len(vals))
		for i, v := range vals {
			re[i] = real(v)
		}
		sort.Float64s(re)
		qs := make([]quantity.Quantity, len(re))
		for i, v := range re {
			qs[i] = quantity.New(v, quantity.AuVolume)
		}
		p.eig = qs
	}
	return p.eig, nil
}
