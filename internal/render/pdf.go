package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"railists/internal/report"
)

const (
	pdfMargin     = 10.0
	pdfLineHeight = 6.0
	pdfFontSize   = 8.0
)

// PDF writes every table on its own landscape A4 page. Columns are scaled
// down when the table is wider than the page.
func PDF(w io.Writer, tables ...report.Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, t := range tables {
		pdf.AddPage()
		if t.Title != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.Cell(0, 8, tr(t.Title))
			pdf.Ln(10)
		}
		widths := pdfColumnWidths(pdf, t, tr)

		if len(t.Header) > 0 {
			pdf.SetFont("Arial", "B", pdfFontSize)
			for i, h := range t.Header {
				pdf.CellFormat(widths[i], pdfLineHeight, tr(h), "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.SetFont("Arial", "", pdfFontSize)
		for _, row := range t.Rows {
			for i := range widths {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(widths[i], pdfLineHeight, tr(cell), "1", 0, pdfAlign(t.ColumnAlign(i)), false, 0, "")
			}
			pdf.Ln(-1)
		}
		if len(t.Footer) > 0 {
			pdf.Ln(4)
			for _, line := range t.Footer {
				pdf.Cell(0, pdfLineHeight, tr(line))
				pdf.Ln(5)
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf write: %w", err)
	}
	return nil
}

func pdfColumnWidths(pdf *gofpdf.Fpdf, t report.Table, tr func(string) string) []float64 {
	n := len(columnWidths(t))
	widths := make([]float64, n)
	measure := func(row []string, style string) {
		pdf.SetFont("Arial", style, pdfFontSize)
		for i, cell := range row {
			if wd := pdf.GetStringWidth(tr(cell)) + 3; wd > widths[i] {
				widths[i] = wd
			}
		}
	}
	measure(t.Header, "B")
	for _, row := range t.Rows {
		measure(row, "")
	}

	pageWidth, _ := pdf.GetPageSize()
	available := pageWidth - 2*pdfMargin
	total := 0.0
	for _, wd := range widths {
		total += wd
	}
	if total > available {
		scale := available / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

func pdfAlign(a report.Align) string {
	switch a {
	case report.AlignRight:
		return "R"
	case report.AlignCenter:
		return "C"
	default:
		return "L"
	}
}
