package report

import (
	"strconv"

	"railists/internal/core"
)

// WishListTable lists the wish list by priority.
func WishListTable(w core.WishList) Table {
	t := Table{
		Title:  w.Name,
		Header: []string{"#", "Brand", "Item number", "Cat.", "Priority", "Scale", "PM", "Description", "Count", "Price range"},
		Align: []Align{
			AlignRight, AlignLeft, AlignLeft, AlignCenter, AlignCenter,
			AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignCenter,
		},
	}
	for i, it := range w.SortedItems() {
		priceRange := "-"
		if low, high, ok := it.PriceRange(); ok {
			priceRange = "from " + low.Price.String() + " to " + high.Price.String()
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			it.Catalog.Brand,
			it.Catalog.ItemNumber,
			it.Category.Symbol(),
			it.Priority.String(),
			it.Catalog.Scale,
			string(it.Catalog.PowerMethod),
			truncate(it.Catalog.Description),
			strconv.Itoa(it.Count),
			priceRange,
		})
	}
	return t
}

// BudgetTable shows the wish list budget per priority.
func BudgetTable(b core.Budget) Table {
	t := Table{
		Title:  "Budget",
		Header: []string{"Priority", "Budget (" + b.Currency + ")"},
		Align:  []Align{AlignLeft, AlignRight},
	}
	for _, p := range core.Priorities() {
		t.Rows = append(t.Rows, []string{p.String(), b.ByPriority(p).StringFixed(2)})
	}
	t.Rows = append(t.Rows, []string{core.TotalLabel, b.Total().StringFixed(2)})
	return t
}
