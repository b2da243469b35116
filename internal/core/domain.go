package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Rolling stock categories. The values are contiguous so a Category can
// index a [NumCategories] array.
const (
	Locomotives Category = iota
	Trains
	PassengerCars
	FreightCars
)

// NumCategories is the size of the closed category set.
const NumCategories = 4

const (
	DC PowerMethod = "DC"
	AC PowerMethod = "AC"
)

const (
	DccReady Control = "DCC_READY"
	Dcc      Control = "DCC"
	DccSound Control = "DCC_SOUND"
)

const (
	Nem651 DccInterface = "NEM_651"
	Nem652 DccInterface = "NEM_652"
	Plux8  DccInterface = "PLUX_8"
	Plux16 DccInterface = "PLUX_16"
	Plux22 DccInterface = "PLUX_22"
	Next18 DccInterface = "NEXT_18"
	Mtc21  DccInterface = "MTC_21"
)

// UnknownYear marks an item without an acquisition date.
const UnknownYear Year = 0

type (
	// Category is the rolling stock kind of a collection item.
	Category int

	// Year is a calendar year of acquisition.
	Year int

	// PowerMethod is the model power supply (DC or AC).
	PowerMethod string

	// Control describes the digital control fitted to a model.
	Control string

	// DccInterface is the NMRA/NEM decoder connector.
	DccInterface string

	// CatalogInfo holds the manufacturer catalog data of an item.
	CatalogInfo struct {
		Brand        string
		ItemNumber   string
		Description  string
		Scale        string
		PowerMethod  PowerMethod
		Epoch        string
		DeliveryDate string
	}

	// Purchase records where, when and for how much an item was bought.
	// Date is zero when unknown.
	Purchase struct {
		Shop  string
		Date  time.Time
		Price Money
	}

	// Locomotive is the payload carried only by locomotive items.
	Locomotive struct {
		ClassName    string
		RoadNumber   string
		Series       string
		Livery       string
		Control      Control
		DccInterface DccInterface
	}

	// Item is one collection record. The category is fixed at creation and
	// the locomotive payload is meaningful only for Locomotives.
	Item struct {
		category Category
		catalog  CatalogInfo
		purchase Purchase
		count    int
		loco     Locomotive
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountPrecision    = errors.New("amount has more than two fraction digits")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrUnknownCategory    = errors.New("unknown rolling stock category")
	ErrInvalidPowerMethod = errors.New("invalid power method")
	ErrInvalidControl     = errors.New("invalid control value")
	ErrInvalidDccIface    = errors.New("invalid dcc interface")
	ErrInvalidPriority    = errors.New("invalid priority")
)

var categoryNames = [NumCategories]string{"Locomotives", "Trains", "Passenger Cars", "Freight Cars"}
var categorySymbols = [NumCategories]string{"L", "T", "P", "F"}
var categoryTags = [NumCategories]string{"LOCOMOTIVE", "TRAIN", "PASSENGER_CAR", "FREIGHT_CAR"}

// Categories lists every category in display order.
func Categories() [NumCategories]Category {
	return [NumCategories]Category{Locomotives, Trains, PassengerCars, FreightCars}
}

// ParseCategory converts a file tag such as "PASSENGER_CAR" to a Category.
func ParseCategory(s string) (Category, error) {
	for i, tag := range categoryTags {
		if s == tag {
			return Category(i), nil
		}
	}
	return 0, ErrUnknownCategory
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	return c >= 0 && c < NumCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// Symbol returns the one letter code used in listings.
func (c Category) Symbol() string {
	if !c.Valid() {
		return "?"
	}
	return categorySymbols[c]
}

// Tag returns the file representation of the category.
func (c Category) Tag() string {
	if !c.Valid() {
		return ""
	}
	return categoryTags[c]
}

// YearOf extracts the acquisition year of a date; a zero date has none.
func YearOf(t time.Time) Year {
	if t.IsZero() {
		return UnknownYear
	}
	return Year(t.Year())
}

// Known reports whether the year was recorded.
func (y Year) Known() bool {
	return y != UnknownYear
}

func (y Year) String() string {
	if !y.Known() {
		return "-"
	}
	return strconv.Itoa(int(y))
}

// ParsePowerMethod accepts "DC" or "AC".
func ParsePowerMethod(s string) (PowerMethod, error) {
	switch PowerMethod(s) {
	case DC, AC:
		return PowerMethod(s), nil
	default:
		return "", ErrInvalidPowerMethod
	}
}

// ParseControl accepts DCC_READY, DCC and DCC_SOUND.
func ParseControl(s string) (Control, error) {
	switch Control(s) {
	case DccReady, Dcc, DccSound:
		return Control(s), nil
	default:
		return "", ErrInvalidControl
	}
}

// ParseDccInterface accepts the NEM/NMRA connector names.
func ParseDccInterface(s string) (DccInterface, error) {
	switch DccInterface(s) {
	case Nem651, Nem652, Plux8, Plux16, Plux22, Next18, Mtc21:
		return DccInterface(s), nil
	default:
		return "", ErrInvalidDccIface
	}
}

// WithDecoder reports whether a decoder is installed: the control is set
// and is not DCC_READY.
func (l Locomotive) WithDecoder() bool {
	return l.Control != "" && l.Control != DccReady
}

// NewLocomotive creates a locomotive item.
func NewLocomotive(catalog CatalogInfo, purchase Purchase, count int, loco Locomotive) Item {
	return Item{category: Locomotives, catalog: catalog, purchase: purchase, count: count, loco: loco}
}

// NewTrain creates a train (or mixed set) item.
func NewTrain(catalog CatalogInfo, purchase Purchase, count int) Item {
	return Item{category: Trains, catalog: catalog, purchase: purchase, count: count}
}

// NewPassengerCar creates a passenger car item.
func NewPassengerCar(catalog CatalogInfo, purchase Purchase, count int) Item {
	return Item{category: PassengerCars, catalog: catalog, purchase: purchase, count: count}
}

// NewFreightCar creates a freight car item.
func NewFreightCar(catalog CatalogInfo, purchase Purchase, count int) Item {
	return Item{category: FreightCars, catalog: catalog, purchase: purchase, count: count}
}

// NewItem dispatches to the category constructor. The locomotive payload
// is ignored for every other category.
func NewItem(category Category, catalog CatalogInfo, purchase Purchase, count int, loco Locomotive) (Item, error) {
	switch category {
	case Locomotives:
		return NewLocomotive(catalog, purchase, count, loco), nil
	case Trains:
		return NewTrain(catalog, purchase, count), nil
	case PassengerCars:
		return NewPassengerCar(catalog, purchase, count), nil
	case FreightCars:
		return NewFreightCar(catalog, purchase, count), nil
	default:
		return Item{}, ErrUnknownCategory
	}
}

func (it Item) Category() Category       { return it.category }
func (it Item) Catalog() CatalogInfo     { return it.catalog }
func (it Item) Purchase() Purchase       { return it.purchase }
func (it Item) Count() int               { return it.count }
func (it Item) Value() Money             { return it.purchase.Price }
func (it Item) Brand() string            { return it.catalog.Brand }
func (it Item) ItemNumber() string       { return it.catalog.ItemNumber }
func (it Item) Description() string      { return it.catalog.Description }
func (it Item) Scale() string            { return it.catalog.Scale }
func (it Item) PowerMethod() PowerMethod { return it.catalog.PowerMethod }
func (it Item) Epoch() string            { return it.catalog.Epoch }
func (it Item) DeliveryDate() string     { return it.catalog.DeliveryDate }
func (it Item) Shop() string             { return it.purchase.Shop }
func (it Item) PurchasedAt() time.Time   { return it.purchase.Date }

// Year returns the acquisition year, UnknownYear when no date was recorded.
func (it Item) Year() Year {
	return YearOf(it.purchase.Date)
}

// IsLocomotive is the classification shared by stats and depot views.
func (it Item) IsLocomotive() bool {
	return it.category == Locomotives
}

// Locomotive returns the locomotive payload; ok is false for any other
// category.
func (it Item) Locomotive() (loco Locomotive, ok bool) {
	if !it.IsLocomotive() {
		return Locomotive{}, false
	}
	return it.loco, true
}

// ClassName is defined on locomotives only.
func (it Item) ClassName() (string, bool) {
	l, ok := it.Locomotive()
	return l.ClassName, ok
}

// RoadNumber is defined on locomotives only.
func (it Item) RoadNumber() (string, bool) {
	l, ok := it.Locomotive()
	return l.RoadNumber, ok
}

// Series is defined on locomotives only.
func (it Item) Series() (string, bool) {
	l, ok := it.Locomotive()
	return l.Series, ok
}

// Livery is defined on locomotives only.
func (it Item) Livery() (string, bool) {
	l, ok := it.Locomotive()
	return l.Livery, ok
}

// WithDecoder is defined on locomotives only.
func (it Item) WithDecoder() (bool, bool) {
	l, ok := it.Locomotive()
	return l.WithDecoder(), ok
}

// DccInterface is defined on locomotives only; the value may be empty.
func (it Item) DccInterface() (DccInterface, bool) {
	l, ok := it.Locomotive()
	return l.DccInterface, ok
}

// less orders items by brand, then item number (case-insensitive brand).
func (it Item) less(other Item) bool {
	b1, b2 := strings.ToLower(it.catalog.Brand), strings.ToLower(other.catalog.Brand)
	if b1 != b2 {
		return b1 < b2
	}
	return it.catalog.ItemNumber < other.catalog.ItemNumber
}
