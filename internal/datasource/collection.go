// Package datasource reads collection and wish list files.
//
// Every element is defaulted and validated before it is turned into a
// core value, so the statistics code only ever sees well formed items.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"railists/internal/core"
)

const (
	modifiedAtLayout = "2006-01-02 15:04:05"
	purchaseLayout   = "2006-01-02"
)

var (
	ErrInvalidRecord   = errors.New("invalid record")
	ErrMixedCurrencies = errors.New("collection mixes currencies")
	ErrEmptyFile       = errors.New("empty file")
	ErrYearOutOfRange  = errors.New("purchase year must be at least 1")
)

type yamlCollection struct {
	Version     int                  `yaml:"version"`
	Description string               `yaml:"description"`
	ModifiedAt  string               `yaml:"modifiedAt"`
	Elements    []yamlCollectionItem `yaml:"elements"`
}

type yamlCollectionItem struct {
	Brand         string             `yaml:"brand" validate:"required"`
	ItemNumber    string             `yaml:"itemNumber" validate:"required"`
	Description   string             `yaml:"description"`
	PowerMethod   string             `yaml:"powerMethod" validate:"required,oneof=DC AC"`
	Scale         string             `yaml:"scale" validate:"required"`
	DeliveryDate  string             `yaml:"deliveryDate" validate:"omitempty,deliverydate"`
	Count         *int               `yaml:"count" default:"1" validate:"gte=0"`
	RollingStocks []yamlRollingStock `yaml:"rollingStocks" validate:"required,min=1,dive"`
	PurchaseInfo  yamlPurchaseInfo   `yaml:"purchaseInfo"`
}

type yamlPurchaseInfo struct {
	Date  string `yaml:"date"`
	Price string `yaml:"price" validate:"required"`
	Shop  string `yaml:"shop"`
}

type yamlRollingStock struct {
	TypeName     string `yaml:"typeName" validate:"required"`
	RoadNumber   string `yaml:"roadNumber"`
	Series       string `yaml:"series"`
	Railway      string `yaml:"railway"`
	Epoch        string `yaml:"epoch"`
	Category     string `yaml:"category" validate:"required,oneof=LOCOMOTIVE TRAIN PASSENGER_CAR FREIGHT_CAR"`
	SubCategory  string `yaml:"subCategory"`
	Depot        string `yaml:"depot"`
	Length       int    `yaml:"length" validate:"gte=0"`
	Livery       string `yaml:"livery"`
	ServiceLevel string `yaml:"serviceLevel"`
	Control      string `yaml:"control" validate:"omitempty,oneof=DCC_READY DCC DCC_SOUND"`
	DccInterface string `yaml:"dccInterface" validate:"omitempty,oneof=NEM_651 NEM_652 PLUX_8 PLUX_16 PLUX_22 NEXT_18 MTC_21"`
}

// LoadCollection reads and parses a collection file.
func LoadCollection(path string) (core.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Collection{}, fmt.Errorf("read collection: %w", err)
	}
	c, err := ParseCollection(data)
	if err != nil {
		return core.Collection{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCollection decodes a collection document. All items must share one
// currency.
func ParseCollection(data []byte) (core.Collection, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return core.Collection{}, ErrEmptyFile
	}
	var doc yamlCollection
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.Collection{}, fmt.Errorf("decode yaml: %w", err)
	}

	modifiedAt, err := parseModifiedAt(doc.ModifiedAt)
	if err != nil {
		return core.Collection{}, err
	}

	c := core.Collection{
		Description: doc.Description,
		Version:     doc.Version,
		ModifiedAt:  modifiedAt,
		Items:       make([]core.Item, 0, len(doc.Elements)),
	}
	currency := ""
	for i := range doc.Elements {
		elem := &doc.Elements[i]
		it, err := elem.toItem()
		if err != nil {
			return core.Collection{}, fmt.Errorf("element %d (%s %s): %w", i+1, elem.Brand, elem.ItemNumber, err)
		}
		cur := it.Value().Currency
		if currency == "" {
			currency = cur
		} else if cur != currency {
			return core.Collection{}, fmt.Errorf("element %d (%s %s): %w: %s and %s", i+1, elem.Brand, elem.ItemNumber, ErrMixedCurrencies, currency, cur)
		}
		c.Items = append(c.Items, it)
	}
	return c, nil
}

func parseModifiedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(modifiedAtLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("modifiedAt %q: %w", s, err)
	}
	return t, nil
}

func (e *yamlCollectionItem) toItem() (core.Item, error) {
	if err := prepare(e); err != nil {
		return core.Item{}, err
	}

	category, err := itemCategory(e.RollingStocks)
	if err != nil {
		return core.Item{}, err
	}
	catalog, err := catalogInfo(e.Brand, e.ItemNumber, e.Description, e.PowerMethod, e.Scale, e.DeliveryDate, e.RollingStocks)
	if err != nil {
		return core.Item{}, err
	}

	purchase := core.Purchase{Shop: e.PurchaseInfo.Shop}
	if e.PurchaseInfo.Date != "" {
		purchase.Date, err = time.Parse(purchaseLayout, e.PurchaseInfo.Date)
		if err != nil {
			return core.Item{}, fmt.Errorf("purchase date %q: %w", e.PurchaseInfo.Date, err)
		}
		if purchase.Date.Year() < 1 {
			return core.Item{}, fmt.Errorf("purchase date %q: %w", e.PurchaseInfo.Date, ErrYearOutOfRange)
		}
	}
	purchase.Price, err = core.ParseMoney(e.PurchaseInfo.Price)
	if err != nil {
		return core.Item{}, fmt.Errorf("price %q: %w", e.PurchaseInfo.Price, err)
	}

	loco, err := locomotivePayload(e.RollingStocks)
	if err != nil {
		return core.Item{}, err
	}
	return core.NewItem(category, catalog, purchase, *e.Count, loco)
}

// itemCategory returns the category shared by every rolling stock. A set
// mixing categories counts as a train.
func itemCategory(stocks []yamlRollingStock) (core.Category, error) {
	var category core.Category
	for i, rs := range stocks {
		c, err := core.ParseCategory(rs.Category)
		if err != nil {
			return 0, fmt.Errorf("rolling stock %d: %w", i+1, err)
		}
		if i == 0 {
			category = c
		} else if c != category {
			category = core.Trains
		}
	}
	return category, nil
}

func catalogInfo(brand, itemNumber, description, powerMethod, scale, deliveryDate string, stocks []yamlRollingStock) (core.CatalogInfo, error) {
	pm, err := core.ParsePowerMethod(powerMethod)
	if err != nil {
		return core.CatalogInfo{}, err
	}
	return core.CatalogInfo{
		Brand:        brand,
		ItemNumber:   itemNumber,
		Description:  description,
		Scale:        scale,
		PowerMethod:  pm,
		Epoch:        epochOf(stocks),
		DeliveryDate: deliveryDate,
	}, nil
}

// epochOf joins the distinct epochs of the rolling stocks, in file order.
func epochOf(stocks []yamlRollingStock) string {
	var epochs []string
	seen := make(map[string]bool)
	for _, rs := range stocks {
		if rs.Epoch == "" || seen[rs.Epoch] {
			continue
		}
		seen[rs.Epoch] = true
		epochs = append(epochs, rs.Epoch)
	}
	return strings.Join(epochs, "/")
}

// locomotivePayload is taken from the first locomotive in the set.
func locomotivePayload(stocks []yamlRollingStock) (core.Locomotive, error) {
	for _, rs := range stocks {
		if rs.Category != "LOCOMOTIVE" {
			continue
		}
		loco := core.Locomotive{
			ClassName:  rs.TypeName,
			RoadNumber: rs.RoadNumber,
			Series:     rs.Series,
			Livery:     rs.Livery,
		}
		if rs.Control != "" {
			control, err := core.ParseControl(rs.Control)
			if err != nil {
				return core.Locomotive{}, err
			}
			loco.Control = control
		}
		if rs.DccInterface != "" {
			iface, err := core.ParseDccInterface(rs.DccInterface)
			if err != nil {
				return core.Locomotive{}, err
			}
			loco.DccInterface = iface
		}
		return loco, nil
	}
	return core.Locomotive{}, nil
}
