package core

import (
	"sort"
	"time"
)

// Collection is a loaded collection file.
type Collection struct {
	Description string
	Version     int
	ModifiedAt  time.Time
	Items       []Item
}

// Len returns the number of entries (not the sum of their counts).
func (c Collection) Len() int {
	return len(c.Items)
}

// Currency returns the currency of the first item, EUR for an empty
// collection.
func (c Collection) Currency() string {
	return currencyOf(c.Items)
}

// SortedItems returns a copy of the items ordered by brand and item number.
func (c Collection) SortedItems() []Item {
	out := make([]Item, len(c.Items))
	copy(out, c.Items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

func currencyOf(items []Item) string {
	for _, it := range items {
		if cur := it.purchase.Price.Currency; cur != "" {
			return cur
		}
	}
	return DefaultCurrency
}
