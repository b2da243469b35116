// Package http serves collection reports over HTTP.
//
// This file parses and validates the query parameters shared by the report
// endpoints: the output format and the collection filters.
package http

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"railists/internal/core"
	"railists/internal/render"
)

// FormatJSON is the default response format of the API. The other formats
// are the render package ones.
const FormatJSON render.Format = "json"

var errBadParam = errors.New("invalid query parameter")

// acceptFormats maps Accept media types to output formats.
var acceptFormats = map[string]render.Format{
	"application/json": FormatJSON,
	"text/plain":       render.FormatText,
	"text/csv":         render.FormatCSV,
	"application/pdf":  render.FormatPDF,

	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": render.FormatXLSX,
}

// ParseFormat reads the format query parameter, falling back to the first
// recognised Accept media type and then to JSON.
func ParseFormat(r *http.Request) (render.Format, error) {
	if v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); v != "" {
		switch f := render.Format(v); f {
		case FormatJSON, render.FormatText, render.FormatCSV, render.FormatXLSX, render.FormatPDF:
			return f, nil
		default:
			return "", fmt.Errorf("%w: format %q", errBadParam, v)
		}
	}

	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if f, ok := acceptFormats[mediaType]; ok {
			return f, nil
		}
	}
	return FormatJSON, nil
}

// CollectionFilter narrows the collection listing. Zero values match
// everything.
type CollectionFilter struct {
	Category    core.Category
	HasCategory bool
	Year        core.Year
	HasYear     bool
}

// ParseCollectionFilter reads category (a file tag such as LOCOMOTIVE) and
// year. year=none selects the items without an acquisition date.
func ParseCollectionFilter(query url.Values) (CollectionFilter, error) {
	var f CollectionFilter

	if v := strings.TrimSpace(query.Get("category")); v != "" {
		c, err := core.ParseCategory(strings.ToUpper(v))
		if err != nil {
			return CollectionFilter{}, fmt.Errorf("%w: category %q", errBadParam, v)
		}
		f.Category, f.HasCategory = c, true
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		f.HasYear = true
		if strings.EqualFold(v, "none") {
			f.Year = core.UnknownYear
		} else {
			y, err := strconv.Atoi(v)
			if err != nil || y < 1 {
				return CollectionFilter{}, fmt.Errorf("%w: year %q", errBadParam, v)
			}
			f.Year = core.Year(y)
		}
	}
	return f, nil
}

// Apply returns a collection holding only the matching items, in file order.
func (f CollectionFilter) Apply(c core.Collection) core.Collection {
	if !f.HasCategory && !f.HasYear {
		return c
	}
	out := c
	out.Items = make([]core.Item, 0, len(c.Items))
	for _, it := range c.Items {
		if f.HasCategory && it.Category() != f.Category {
			continue
		}
		if f.HasYear && it.Year() != f.Year {
			continue
		}
		out.Items = append(out.Items, it)
	}
	return out
}
