package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Priority ranks wish list entries. The zero value is Normal.
type Priority int

const (
	Normal Priority = iota
	High
	Low
)

var priorityNames = map[Priority]string{High: "High", Normal: "Normal", Low: "Low"}

// Priorities lists priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{High, Normal, Low}
}

// ParsePriority accepts HIGH, NORMAL and LOW. An empty string is Normal.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NORMAL":
		return Normal, nil
	case "HIGH":
		return High, nil
	case "LOW":
		return Low, nil
	default:
		return Normal, ErrInvalidPriority
	}
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "Unknown"
}

// rank orders High < Normal < Low.
func (p Priority) rank() int {
	switch p {
	case High:
		return 0
	case Low:
		return 2
	default:
		return 1
	}
}

// PriceInfo is a price offered by one shop.
type PriceInfo struct {
	Shop  string
	Price Money
}

// WishListItem is an item not yet purchased.
type WishListItem struct {
	Category Category
	Catalog  CatalogInfo
	Count    int
	Priority Priority
	Prices   []PriceInfo
}

// PriceRange returns the cheapest and the most expensive offers; ok is
// false when there are no prices.
func (w WishListItem) PriceRange() (lowest, highest PriceInfo, ok bool) {
	if len(w.Prices) == 0 {
		return PriceInfo{}, PriceInfo{}, false
	}
	lowest, highest = w.Prices[0], w.Prices[0]
	for _, p := range w.Prices[1:] {
		if p.Price.Cmp(lowest.Price) < 0 {
			lowest = p
		}
		if p.Price.Cmp(highest.Price) > 0 {
			highest = p
		}
	}
	return lowest, highest, true
}

// WishList is a named list of wanted items.
type WishList struct {
	Name    string
	Version int
	Items   []WishListItem
}

// SortedItems orders items by priority, then brand and item number.
func (w WishList) SortedItems() []WishListItem {
	out := make([]WishListItem, len(w.Items))
	copy(out, w.Items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.rank() != b.Priority.rank() {
			return a.Priority.rank() < b.Priority.rank()
		}
		ba, bb := strings.ToLower(a.Catalog.Brand), strings.ToLower(b.Catalog.Brand)
		if ba != bb {
			return ba < bb
		}
		return a.Catalog.ItemNumber < b.Catalog.ItemNumber
	})
	return out
}

// Budget is the money needed to buy every wish list item at its highest
// listed price.
type Budget struct {
	Currency   string
	byPriority map[Priority]decimal.Decimal
}

// ByPriority returns the budget for one priority, zero when absent.
func (b Budget) ByPriority(p Priority) decimal.Decimal {
	if v, ok := b.byPriority[p]; ok {
		return v
	}
	return decimal.Zero
}

// Total sums every priority.
func (b Budget) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b.byPriority {
		total = total.Add(v)
	}
	return total
}

// ComputeBudget sums the maximum price of every item, grouped by priority.
// Items without prices contribute zero.
func ComputeBudget(w WishList) Budget {
	byPriority := make(map[Priority]decimal.Decimal)
	currency := ""
	for _, it := range w.Items {
		amount := decimal.Zero
		if _, highest, ok := it.PriceRange(); ok {
			amount = highest.Price.Amount
			if currency == "" {
				currency = highest.Price.Currency
			}
		}
		byPriority[it.Priority] = byPriority[it.Priority].Add(amount)
	}
	for p, v := range byPriority {
		byPriority[p] = roundCents(v)
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Budget{Currency: currency, byPriority: byPriority}
}
