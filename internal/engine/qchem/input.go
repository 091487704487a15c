package qchem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chemtools/qcflow/internal/chem"
)

// Input is a renderable Q-Chem input deck: one or more molecules plus the
// settings blocks.
type Input struct {
	Molecules []*chem.Molecule
	Settings  *Settings
}

// NewInput builds a deck. With no molecules the $molecule block renders as
// "read" (geometry taken from a previous job).
func NewInput(settings *Settings, molecules ...*chem.Molecule) *Input {
	if settings == nil {
		settings = NewSettings()
	}
	return &Input{Molecules: molecules, Settings: settings}
}

// String renders the full deck.
func (in *Input) String() string {
	var b strings.Builder

	b.WriteString("$molecule\n")
	b.WriteString(in.moleculeBlock())
	b.WriteString("\n$end\n")

	for _, sec := range in.Settings.Sections() {
		b.WriteString("\n")
		b.WriteString(renderBlock(sec, in.Settings))
	}

	if xc := in.Settings.XC(); len(xc) > 0 {
		b.WriteString("\n")
		b.WriteString(renderXCBlock(xc))
	}

	return b.String()
}

func (in *Input) moleculeBlock() string {
	if len(in.Molecules) == 0 {
		return "  read"
	}

	var parts []string
	if len(in.Molecules) > 1 {
		totalCharge := 0
		for _, m := range in.Molecules {
			totalCharge += m.Charge
		}
		// total multiplicity from charge parity, fragment blocks follow
		totalMult := totalCharge%2 + 1
		if totalMult < 1 {
			totalMult += 2
		}
		parts = append(parts, fmt.Sprintf("  %d %d", totalCharge, totalMult))
	}

	for _, m := range in.Molecules {
		parts = append(parts, structureBlock(m))
	}

	return strings.Join(parts, "\n--\n")
}

func structureBlock(m *chem.Molecule) string {
	lines := []string{fmt.Sprintf("  %d %d", m.Charge, m.Multiplicity)}
	for _, a := range m.Structure.Atoms {
		lines = append(lines, fmt.Sprintf("  %s  %s  %s  %s",
			a.Symbol,
			formatCoord(a.Position[0]),
			formatCoord(a.Position[1]),
			formatCoord(a.Position[2]),
		))
	}
	return strings.Join(lines, "\n")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}

// renderBlock renders one $section block with keys padded to the longest
// key so values line up.
func renderBlock(sec string, s *Settings) string {
	keys := s.Keys(sec)
	longest := 0
	for _, k := range keys {
		if len(k) > longest {
			longest = len(k)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "$%s\n", sec)
	for _, k := range keys {
		v, _ := s.Get(sec, k)
		fmt.Fprintf(&b, "  %s%s %s\n", k, strings.Repeat(" ", longest-len(k)+1), formatValue(v))
	}
	b.WriteString("$end\n")
	return b.String()
}

// renderXCBlock renders the $xc_functional rows. K rows carry no component
// name; the coefficient column is aligned on the longest name.
func renderXCBlock(components []XCComponent) string {
	longest := 0
	for _, c := range components {
		if len(c.Name) > longest {
			longest = len(c.Name)
		}
	}

	var b strings.Builder
	b.WriteString("$xc_functional\n")
	for _, c := range components {
		if c.Type == "K" {
			fmt.Fprintf(&b, "  K %s %g\n", strings.Repeat(" ", longest+1), c.Coefficient)
		} else {
			fmt.Fprintf(&b, "  %s %s%s %g\n", c.Type, c.Name, strings.Repeat(" ", longest-len(c.Name)+1), c.Coefficient)
		}
	}
	b.WriteString("$end\n")
	return b.String()
}
