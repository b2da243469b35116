package report

import (
	"strconv"

	"railists/internal/core"
)

const dateLayout = "2006-01-02"

// CollectionTable lists every item ordered by brand and item number.
func CollectionTable(c core.Collection) Table {
	t := Table{
		Title:  c.Description,
		Header: []string{"#", "Brand", "Item number", "Scale", "PM", "Cat.", "Description", "Count", "Added", "Price", "Shop"},
		Align: []Align{
			AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignCenter,
			AlignLeft, AlignRight, AlignLeft, AlignRight, AlignLeft,
		},
	}
	for i, it := range c.SortedItems() {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			it.Brand(),
			it.ItemNumber(),
			it.Scale(),
			string(it.PowerMethod()),
			it.Category().Symbol(),
			truncate(it.Description()),
			strconv.Itoa(it.Count()),
			formatDate(it),
			it.Value().String(),
			it.Shop(),
		})
	}
	return t
}

// CollectionRecords is the flat export of the collection, in file order.
func CollectionRecords(c core.Collection) Table {
	t := Table{
		Title:  c.Description,
		Header: []string{"Brand", "ItemNumber", "Category", "Description", "Epoch", "Shop", "Date", "Count", "Price"},
	}
	for _, it := range c.Items {
		t.Rows = append(t.Rows, []string{
			it.Brand(),
			it.ItemNumber(),
			it.Category().String(),
			it.Description(),
			it.Epoch(),
			it.Shop(),
			formatDate(it),
			strconv.Itoa(it.Count()),
			it.Value().String(),
		})
	}
	return t
}

func formatDate(it core.Item) string {
	if it.PurchasedAt().IsZero() {
		return "-"
	}
	return it.PurchasedAt().Format(dateLayout)
}
