package qchem

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chemtools/qcflow/internal/chem"
	qcerrors "github.com/chemtools/qcflow/internal/errors"
	"github.com/chemtools/qcflow/internal/quantity"
)

// Output wraps a Q-Chem output file's text and exposes the individual
// scrapers. Each scraper searches for its marker independently; missing
// markers surface as parse errors (the task variants decide whether that is
// fatal or a documented nil result).
type Output struct {
	Path string
	Text string
}

// ReadOutputFile loads an output file.
func ReadOutputFile(path string) (*Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine output %s: %w", path, err)
	}
	return &Output{Path: path, Text: string(data)}, nil
}

// Footer is the job accounting trailer.
type Footer struct {
	Walltime  quantity.Quantity
	CPUTime   quantity.Quantity
	Completed time.Time
}

var (
	footerRe = regexp.MustCompile(`Total\s+job\s+time:\s*(\d+\.\d+)s\(wall\),\s*(\d+\.\d+)s\(cpu\)`)
	dateRe   = regexp.MustCompile(`([A-Z][a-z]{2})\s+([A-Z][a-z]{2})\s+(\d+)\s+(\d+):(\d+):(\d+)\s+(\d+)`)

	scfEnergyRe = regexp.MustCompile(`Total energy in the final basis set =\s*(-?\d+\.\d+)`)

	excitationRe = regexp.MustCompile(`Excited state\s+\d+: excitation energy \(eV\) =\s+(-?\d+\.\d+)`)
	strengthRe   = regexp.MustCompile(`Strength\s*:\s*(\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)`)
	multRe       = regexp.MustCompile(`Multiplicity:\s*(\w+)`)

	polarizabilityMarker = "Polarizability Matrix (a.u.)"
	orientationMarker    = "Standard Nuclear Orientation (Angstroms)"
	floatRe              = regexp.MustCompile(`-?\d+\.\d+`)

	dipoleRe = regexp.MustCompile(`Dipole Moment \(Debye\)\s*\n\s*X\s+(-?\d+\.\d+)\s+Y\s+(-?\d+\.\d+)\s+Z\s+(-?\d+\.\d+)`)
)

// Footer parses the total job time line and the completion timestamp that
// follows it.
func (o *Output) Footer() (*Footer, error) {
	m := footerRe.FindStringSubmatchIndex(o.Text)
	if m == nil {
		return nil, qcerrors.NewParseError("Total job time", o.Path)
	}
	wall, _ := strconv.ParseFloat(o.Text[m[2]:m[3]], 64)
	cpu, _ := strconv.ParseFloat(o.Text[m[4]:m[5]], 64)

	f := &Footer{
		Walltime: quantity.New(wall, quantity.Second),
		CPUTime:  quantity.New(cpu, quantity.Second),
	}

	if d := dateRe.FindStringSubmatch(o.Text[m[1]:]); d != nil {
		stamp := fmt.Sprintf("%s %s %s %s:%s:%s %s", d[1], d[2], d[3], d[4], d[5], d[6], d[7])
		if ts, err := time.Parse("Mon Jan 2 15:04:05 2006", stamp); err == nil {
			f.Completed = ts
		}
	}

	return f, nil
}

// SCFEnergies returns every converged SCF total energy in the file, in eV.
func (o *Output) SCFEnergies() []quantity.Quantity {
	var out []quantity.Quantity
	for _, m := range scfEnergyRe.FindAllStringSubmatch(o.Text, -1) {
		hartree, _ := strconv.ParseFloat(m[1], 64)
		out = append(out, quantity.New(hartree, quantity.Hartree).MustConvert(quantity.EV))
	}
	return out
}

// TotalEnergy returns the last SCF energy, or nil when the file carries no
// converged energy marker.
func (o *Output) TotalEnergy() *quantity.Quantity {
	energies := o.SCFEnergies()
	if len(energies) == 0 {
		return nil
	}
	e := energies[len(energies)-1]
	return &e
}

// FrontierEnergies are the highest occupied and lowest unoccupied orbital
// energies, in eV.
type FrontierEnergies struct {
	HOMO quantity.Quantity
	LUMO quantity.Quantity
}

// Frontier scans the orbital energy listing. For open-shell jobs the HOMO is
// the highest occupied level over both spins and the LUMO the lowest virtual
// level. Returns nil when the listing is absent.
func (o *Output) Frontier() *FrontierEnergies {
	idx := strings.Index(o.Text, "Orbital Energies (a.u.)")
	if idx < 0 {
		return nil
	}

	var homos, lumos []float64
	lines := strings.Split(o.Text[idx:], "\n")

	const (
		stateNone = iota
		stateOccupied
		stateVirtual
	)
	state := stateNone
	var occupied, virtual []float64

	flush := func() {
		if len(occupied) > 0 {
			homos = append(homos, occupied[len(occupied)-1])
		}
		if len(virtual) > 0 {
			lumos = append(lumos, virtual[0])
		}
		occupied, virtual = nil, nil
	}

	for _, line := range lines[1:] {
		switch {
		case strings.Contains(line, "-- Occupied --"):
			flush()
			state = stateOccupied
		case strings.Contains(line, "-- Virtual --"):
			state = stateVirtual
		case strings.Contains(line, "----------"):
			// end of the listing
			flush()
			state = stateNone
		default:
			if state == stateNone {
				continue
			}
			vals := floatRe.FindAllString(line, -1)
			if len(vals) == 0 {
				continue
			}
			for _, v := range vals {
				f, _ := strconv.ParseFloat(v, 64)
				if state == stateOccupied {
					occupied = append(occupied, f)
				} else {
					virtual = append(virtual, f)
				}
			}
		}
		if state == stateNone && len(homos) > 0 {
			break
		}
	}
	flush()

	if len(homos) == 0 || len(lumos) == 0 {
		return nil
	}

	homo, lumo := homos[0], lumos[0]
	for _, h := range homos[1:] {
		if h > homo {
			homo = h
		}
	}
	for _, l := range lumos[1:] {
		if l < lumo {
			lumo = l
		}
	}

	return &FrontierEnergies{
		HOMO: quantity.New(homo, quantity.Hartree).MustConvert(quantity.EV),
		LUMO: quantity.New(lumo, quantity.Hartree).MustConvert(quantity.EV),
	}
}

// Excitations parses the TDDFT/CIS excited state listing into a spectrum.
func (o *Output) Excitations() (*chem.ExcitationSpectrum, error) {
	locs := excitationRe.FindAllStringSubmatchIndex(o.Text, -1)
	if len(locs) == 0 {
		return nil, qcerrors.NewParseError("Excited state", o.Path)
	}

	var excitations []chem.Excitation
	for i, loc := range locs {
		end := len(o.Text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := o.Text[loc[0]:end]

		ev, _ := strconv.ParseFloat(o.Text[loc[2]:loc[3]], 64)
		exc := chem.Excitation{Energy: quantity.New(ev, quantity.EV)}

		if m := strengthRe.FindStringSubmatch(block); m != nil {
			exc.OscillatorStrength, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := multRe.FindStringSubmatch(block); m != nil {
			exc.Symmetry = m[1]
		}

		excitations = append(excitations, exc)
	}

	return chem.NewExcitationSpectrum(excitations...), nil
}

// Polarizability parses the last polarizability matrix in the file, or
// returns nil when the marker is absent.
func (o *Output) Polarizability() *chem.Polarizability {
	idx := strings.LastIndex(o.Text, polarizabilityMarker)
	if idx < 0 {
		return nil
	}

	vals := floatRe.FindAllString(o.Text[idx:], 9)
	if len(vals) < 9 {
		return nil
	}

	var tensor [9]float64
	for i, v := range vals {
		tensor[i], _ = strconv.ParseFloat(v, 64)
	}
	return chem.NewPolarizability(tensor)
}

// Dipole parses the last dipole moment vector in the file, or returns nil
// when the marker is absent.
func (o *Output) Dipole() *chem.Dipole {
	ms := dipoleRe.FindAllStringSubmatch(o.Text, -1)
	if len(ms) == 0 {
		return nil
	}
	m := ms[len(ms)-1]

	var moment [3]float64
	for i := 0; i < 3; i++ {
		moment[i], _ = strconv.ParseFloat(m[i+1], 64)
	}
	return &chem.Dipole{Moment: moment, Unit: quantity.Debye}
}

// FinalStructure parses the last nuclear orientation block into a structure.
func (o *Output) FinalStructure() (chem.Structure, error) {
	idx := strings.LastIndex(o.Text, orientationMarker)
	if idx < 0 {
		return chem.Structure{}, qcerrors.NewParseError(orientationMarker, o.Path)
	}

	var atoms []chem.Atom
	dashes := 0
	for _, line := range strings.Split(o.Text[idx:], "\n")[1:] {
		if strings.Contains(line, "----------") {
			dashes++
			if dashes == 2 {
				break
			}
			continue
		}
		if dashes == 0 {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[2], 64)
		y, errY := strconv.ParseFloat(fields[3], 64)
		z, errZ := strconv.ParseFloat(fields[4], 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		atom, err := chem.NewAtom(fields[1], x, y, z)
		if err != nil {
			return chem.Structure{}, fmt.Errorf("parsing geometry in %s: %w", o.Path, err)
		}
		atoms = append(atoms, atom)
	}

	if len(atoms) == 0 {
		return chem.Structure{}, qcerrors.NewParseError("geometry rows", o.Path)
	}
	return chem.NewStructure(atoms...), nil
}
