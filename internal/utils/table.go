package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chemtools/qcflow/internal/quantity"
)

// TableFormatter renders calculation results as a box-drawn table. Columns
// whose cells are all numeric are right-aligned so magnitudes line up;
// labels and units stay left-aligned.
type TableFormatter struct {
	headers []string
	rows    [][]string
	widths  []int
	numeric []bool
}

// NewTableFormatter creates a table with the given column headers.
func NewTableFormatter(headers []string) *TableFormatter {
	widths := make([]int, len(headers))
	numeric := make([]bool, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
		numeric[i] = true
	}
	return &TableFormatter{
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
		numeric: numeric,
	}
}

// AddRow appends a row. Rows whose cell count does not match the headers are
// dropped.
func (t *TableFormatter) AddRow(row []string) {
	if len(row) != len(t.headers) {
		return
	}
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			t.numeric[i] = false
		}
	}
}

// AddQuantityRow appends a property row, splitting a quantity into its value
// and unit columns. The table must have exactly three columns.
func (t *TableFormatter) AddQuantityRow(property string, q quantity.Quantity) {
	t.AddRow([]string{
		property,
		strconv.FormatFloat(q.Value, 'f', 6, 64),
		q.Unit.Name,
	})
}

// AddValueRow appends a property row for a dimensionless number.
func (t *TableFormatter) AddValueRow(property string, value float64) {
	t.AddRow([]string{property, strconv.FormatFloat(value, 'f', 4, 64), ""})
}

// String returns the formatted table.
func (t *TableFormatter) String() string {
	var sb strings.Builder

	t.writeBorder(&sb, "┌", "┬", "┐")

	sb.WriteString("│")
	for i, h := range t.headers {
		sb.WriteString(fmt.Sprintf(" %-*s ", t.widths[i], h))
		sb.WriteString("│")
	}
	sb.WriteString("\n")

	t.writeBorder(&sb, "├", "┼", "┤")

	for _, row := range t.rows {
		sb.WriteString("│")
		for i, cell := range row {
			if t.numeric[i] {
				sb.WriteString(fmt.Sprintf(" %*s ", t.widths[i], cell))
			} else {
				sb.WriteString(fmt.Sprintf(" %-*s ", t.widths[i], cell))
			}
			sb.WriteString("│")
		}
		sb.WriteString("\n")
	}

	t.writeBorder(&sb, "└", "┴", "┘")

	return sb.String()
}

func (t *TableFormatter) writeBorder(sb *strings.Builder, left, middle, right string) {
	sb.WriteString(left)
	for i, w := range t.widths {
		sb.WriteString(strings.Repeat("─", w+2))
		if i < len(t.widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right)
	sb.WriteString("\n")
}
