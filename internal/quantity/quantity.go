package quantity

import (
	"fmt"
	"math"
)

// Dimension is the physical dimension signature of a unit, expressed as
// integer exponents over the SI base dimensions this package needs.
type Dimension struct {
	Length  int
	Mass    int
	Time    int
	Current int
}

// Mul returns the dimension of a product of two quantities.
func (d Dimension) Mul(o Dimension) Dimension {
	return Dimension{
		Length:  d.Length + o.Length,
		Mass:    d.Mass + o.Mass,
		Time:    d.Time + o.Time,
		Current: d.Current + o.Current,
	}
}

// Unit is a named scale factor over a dimension. Scale converts a value in
// this unit to SI base units.
type Unit struct {
	Name  string
	Dim   Dimension
	Scale float64
}

// Pow raises a unit to an integer power.
func (u Unit) Pow(n int) Unit {
	return Unit{
		Name: fmt.Sprintf("%s^%d", u.Name, n),
		Dim: Dimension{
			Length:  u.Dim.Length * n,
			Mass:    u.Dim.Mass * n,
			Time:    u.Dim.Time * n,
			Current: u.Dim.Current * n,
		},
		Scale: math.Pow(u.Scale, float64(n)),
	}
}

var (
	energyDim = Dimension{Length: 2, Mass: 1, Time: -2}

	// Second is the SI second.
	Second = Unit{Name: "s", Dim: Dimension{Time: 1}, Scale: 1}
	// Angstrom is 1e-10 m.
	Angstrom = Unit{Name: "angstrom", Dim: Dimension{Length: 1}, Scale: 1e-10}
	// Bohr is the atomic unit of length.
	Bohr = Unit{Name: "bohr", Dim: Dimension{Length: 1}, Scale: 0.529177210903e-10}
	// EV is the electronvolt.
	EV = Unit{Name: "eV", Dim: energyDim, Scale: 1.602176634e-19}
	// Hartree is the atomic unit of energy.
	Hartree = Unit{Name: "hartree", Dim: energyDim, Scale: 4.3597447222071e-18}
	// AuVolume is the atomic unit of volume (bohr^3), the unit engine
	// polarizability tensors are reported in.
	AuVolume = Bohr.Pow(3)
	// Debye is the unit engine dipole moments are reported in.
	Debye = Unit{
		Name:  "debye",
		Dim:   Dimension{Length: 1, Time: 1, Current: 1},
		Scale: 3.33564095e-30,
	}
)

// wavenumberToEV converts 1 cm^-1 to eV (h*c in eV*cm).
const wavenumberToEV = 1.2398419843320026e-4

// Quantity is a numeric value tagged with a unit. The zero value is
// dimensionless zero.
type Quantity struct {
	Value float64
	Unit  Unit
}

// New returns value expressed in unit.
func New(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// FromWavenumber converts a spectroscopic wavenumber in cm^-1 to an energy
// quantity in eV.
func FromWavenumber(perCM float64) Quantity {
	return New(perCM*wavenumberToEV, EV)
}

// Convert expresses q in the target unit. Converting across dimensions is a
// precondition failure.
func (q Quantity) Convert(to Unit) (Quantity, error) {
	if q.Unit.Dim != to.Dim {
		return Quantity{}, fmt.Errorf("cannot convert %s to %s: incompatible dimensions", q.Unit.Name, to.Name)
	}
	return Quantity{Value: q.Value * q.Unit.Scale / to.Scale, Unit: to}, nil
}

// MustConvert is Convert for unit pairs the caller knows are compatible.
func (q Quantity) MustConvert(to Unit) Quantity {
	out, err := q.Convert(to)
	if err != nil {
		panic(err)
	}
	return out
}

// Add returns q + o expressed in q's unit.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	oc, err := o.Convert(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value + oc.Value, Unit: q.Unit}, nil
}

// Sub returns q - o expressed in q's unit.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	oc, err := o.Convert(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value - oc.Value, Unit: q.Unit}, nil
}

// Mul returns the product quantity; units multiply.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{
		Value: q.Value * o.Value,
		Unit: Unit{
			Name:  q.Unit.Name + "*" + o.Unit.Name,
			Dim:   q.Unit.Dim.Mul(o.Unit.Dim),
			Scale: q.Unit.Scale * o.Unit.Scale,
		},
	}
}

// Scale multiplies the value by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{Value: q.Value * f, Unit: q.Unit}
}

// Square returns q*q.
func (q Quantity) Square() Quantity {
	return q.Mul(q)
}

// Sqrt returns the square root of q. The unit's dimension exponents must all
// be even.
func (q Quantity) Sqrt() (Quantity, error) {
	d := q.Unit.Dim
	if d.Length%2 != 0 || d.Mass%2 != 0 || d.Time%2 != 0 || d.Current%2 != 0 {
		return Quantity{}, fmt.Errorf("cannot take square root of unit %s", q.Unit.Name)
	}
	if q.Value < 0 {
		return Quantity{}, fmt.Errorf("cannot take square root of negative quantity %g %s", q.Value, q.Unit.Name)
	}
	return Quantity{
		Value: math.Sqrt(q.Value),
		Unit: Unit{
			Name: "sqrt(" + q.Unit.Name + ")",
			Dim: Dimension{
				Length:  d.Length / 2,
				Mass:    d.Mass / 2,
				Time:    d.Time / 2,
				Current: d.Current / 2,
			},
			Scale: math.Sqrt(q.Unit.Scale),
		},
	}, nil
}

// Less reports whether q < o after conversion to q's unit.
func (q Quantity) Less(o Quantity) (bool, error) {
	oc, err := o.Convert(q.Unit)
	if err != nil {
		return false, err
	}
	return q.Value < oc.Value, nil
}

// IsPositive reports whether the value is strictly positive.
func (q Quantity) IsPositive() bool {
	return q.Value > 0
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit.Name)
}
