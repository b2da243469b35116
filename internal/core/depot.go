package core

// DepotCard is the depot view of one locomotive.
type DepotCard struct {
	ClassName    string
	RoadNumber   string
	Series       string
	Livery       string
	Brand        string
	ItemNumber   string
	WithDecoder  bool
	DccInterface DccInterface
}

// Depot lists the locomotives of a collection.
type Depot struct {
	Locomotives []DepotCard
}

// Len is the number of locomotive cards.
func (d Depot) Len() int {
	return len(d.Locomotives)
}

// BuildDepot keeps the locomotive items in input order. It uses the same
// predicate as the statistics partition, so Depot.Len equals the number of
// locomotive entries counted there.
func BuildDepot(items []Item) Depot {
	cards := make([]DepotCard, 0)
	for _, it := range items {
		loco, ok := it.Locomotive()
		if !ok {
			continue
		}
		cards = append(cards, DepotCard{
			ClassName:    loco.ClassName,
			RoadNumber:   loco.RoadNumber,
			Series:       loco.Series,
			Livery:       loco.Livery,
			Brand:        it.catalog.Brand,
			ItemNumber:   it.catalog.ItemNumber,
			WithDecoder:  loco.WithDecoder(),
			DccInterface: loco.DccInterface,
		})
	}
	return Depot{Locomotives: cards}
}
