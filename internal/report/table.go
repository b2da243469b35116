// Package report turns collection values into display tables.
//
// A Table holds only strings; the render package decides how they are
// laid out (plain text, CSV, XLSX or PDF).
package report

// Align is the horizontal alignment of a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Table is a titled grid of text cells with optional footer lines.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	Align  []Align
	Footer []string
}

// ColumnAlign returns the alignment of column i, left when unset.
func (t Table) ColumnAlign(i int) Align {
	if i < len(t.Align) {
		return t.Align[i]
	}
	return AlignLeft
}

const maxDescription = 50

// truncate shortens descriptions of 50 or more characters to 47 plus an
// ellipsis.
func truncate(s string) string {
	r := []rune(s)
	if len(r) < maxDescription {
		return s
	}
	return string(r[:maxDescription-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
