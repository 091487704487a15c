package chem

import (
	"math"

	"github.com/chemtools/qcflow/internal/quantity"
)

// Excitation is a single electronic excitation.
type Excitation struct {
	Energy             quantity.Quantity
	OscillatorStrength float64
	Symmetry           string
}

// ExcitationSpectrum is an ordered set of electronic excitations.
type ExcitationSpectrum struct {
	Excitations []Excitation
}

// NewExcitationSpectrum builds a spectrum from excitations in order.
func NewExcitationSpectrum(excitations ...Excitation) *ExcitationSpectrum {
	return &ExcitationSpectrum{Excitations: excitations}
}

// Broaden returns the gaussian-broadened absorption profile: each stick
// becomes a gaussian of the given full width at half maximum, scaled by its
// oscillator strength. The returned function evaluates the summed profile at
// a probe energy.
func (s *ExcitationSpectrum) Broaden(fwhm quantity.Quantity) func(energy quantity.Quantity) (float64, error) {
	ln2 := math.Log(2)
	return func(energy quantity.Quantity) (float64, error) {
		total := 0.0
		for _, exc := range s.Excitations {
			diff, err := energy.Sub(exc.Energy)
			if err != nil {
				return 0, err
			}
			f, err := fwhm.Convert(energy.Unit)
			if err != nil {
				return 0, err
			}
			x := diff.Value / f.Value
			total += exc.OscillatorStrength * math.Exp(-ln2*2*x*x)
		}
		return total, nil
	}
}
