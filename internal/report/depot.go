package report

import (
	"fmt"
	"strconv"

	"railists/internal/core"
)

// DepotTable lists the locomotives in collection order.
func DepotTable(d core.Depot) Table {
	t := Table{
		Title:  "Depot",
		Header: []string{"#", "Class name", "Road number", "Series", "Livery", "Brand", "Item Number", "With decoder", "DCC"},
		Align: []Align{
			AlignCenter, AlignLeft, AlignLeft, AlignLeft, AlignLeft,
			AlignLeft, AlignLeft, AlignCenter, AlignCenter,
		},
	}
	for i, card := range d.Locomotives {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			card.ClassName,
			card.RoadNumber,
			card.Series,
			card.Livery,
			card.Brand,
			card.ItemNumber,
			yesNo(card.WithDecoder),
			string(card.DccInterface),
		})
	}
	t.Footer = []string{DepotSummary(d)}
	return t
}

// DepotSummary is the "N locomotive(s)" line.
func DepotSummary(d core.Depot) string {
	return fmt.Sprintf("%d locomotive(s)", d.Len())
}
