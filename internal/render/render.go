// Package render writes report tables as plain text, CSV, XLSX or PDF.
package render

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"railists/internal/report"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown output format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Write renders tables in the given format. CSV accepts a single table.
func Write(w io.Writer, format Format, tables ...report.Table) error {
	switch format {
	case FormatText:
		return Text(w, tables...)
	case FormatCSV:
		if len(tables) != 1 {
			return fmt.Errorf("csv output takes one table, got %d", len(tables))
		}
		return CSV(w, tables[0])
	case FormatXLSX:
		return XLSX(w, tables...)
	case FormatPDF:
		return PDF(w, tables...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
