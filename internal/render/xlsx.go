package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"railists/internal/report"
)

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	maxColumnWide = 60
)

// XLSX writes one worksheet per table. Right aligned cells holding plain
// numbers are stored as numbers so they can be summed in the spreadsheet.
func XLSX(w io.Writer, tables ...report.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	used := make(map[string]bool)
	for i, t := range tables {
		name := uniqueSheetName(t.Title, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("xlsx sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, t, bold); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t report.Table, headerStyle int) error {
	widths := columnWidths(t)
	row := 1
	if len(t.Header) > 0 {
		for c, h := range t.Header {
			if err := setCell(f, sheet, c+1, row, h, false); err != nil {
				return err
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(t.Header), row)
		if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
			return fmt.Errorf("xlsx header style: %w", err)
		}
		row++
	}
	for _, cells := range t.Rows {
		for c, v := range cells {
			numeric := t.ColumnAlign(c) == report.AlignRight
			if err := setCell(f, sheet, c+1, row, v, numeric); err != nil {
				return err
			}
		}
		row++
	}
	if len(t.Footer) > 0 {
		row++
		for _, line := range t.Footer {
			if err := setCell(f, sheet, 1, row, line, false); err != nil {
				return err
			}
			row++
		}
	}

	for c, width := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(width+2, maxColumnWide))); err != nil {
			return fmt.Errorf("xlsx column width: %w", err)
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value string, numeric bool) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	var v any = value
	if numeric {
		if d, err := decimal.NewFromString(value); err == nil {
			v = d.InexactFloat64()
		}
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("xlsx cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// uniqueSheetName derives a valid worksheet name from a table title.
func uniqueSheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = fmt.Sprintf("Table %d", index+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
