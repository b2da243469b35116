package render

import (
	"encoding/csv"
	"io"

	"railists/internal/report"
)

// CSV writes the header and rows of a table; the footer is not exported.
func CSV(w io.Writer, t report.Table) error {
	cw := csv.NewWriter(w)
	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
