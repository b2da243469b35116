package render

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"railists/internal/report"
)

// Text draws boxed tables followed by their footer lines.
func Text(w io.Writer, tables ...report.Table) error {
	bw := bufio.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeTextTable(bw, t)
	}
	return bw.Flush()
}

func writeTextTable(w *bufio.Writer, t report.Table) {
	widths := columnWidths(t)
	sep := separator(widths)

	w.WriteString(sep)
	if len(t.Header) > 0 {
		writeTextRow(w, t, widths, t.Header, true)
		w.WriteString(sep)
	}
	for _, row := range t.Rows {
		writeTextRow(w, t, widths, row, false)
	}
	if len(t.Rows) > 0 {
		w.WriteString(sep)
	}
	for _, line := range t.Footer {
		w.WriteString(line)
		w.WriteString("\n")
	}
}

func columnWidths(t report.Table) []int {
	n := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	widths := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
			if l := utf8.RuneCountInString(cell); l > widths[i] {
				widths[i] = l
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, width := range widths {
		b.WriteString(strings.Repeat("-", width+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func writeTextRow(w *bufio.Writer, t report.Table, widths []int, row []string, header bool) {
	w.WriteString("|")
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		align := t.ColumnAlign(i)
		if header {
			align = report.AlignLeft
		}
		w.WriteString(" ")
		w.WriteString(pad(cell, width, align))
		w.WriteString(" |")
	}
	w.WriteString("\n")
}

func pad(s string, width int, align report.Align) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case report.AlignRight:
		return strings.Repeat(" ", gap) + s
	case report.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
