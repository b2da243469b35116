package datasource

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"railists/internal/core"
)

type yamlWishList struct {
	Name       string             `yaml:"name"`
	Version    int                `yaml:"version"`
	ModifiedAt string             `yaml:"modifiedAt"`
	Elements   []yamlWishListItem `yaml:"elements"`
}

type yamlWishListItem struct {
	Brand         string             `yaml:"brand" validate:"required"`
	ItemNumber    string             `yaml:"itemNumber" validate:"required"`
	Description   string             `yaml:"description"`
	PowerMethod   string             `yaml:"powerMethod" validate:"required,oneof=DC AC"`
	Scale         string             `yaml:"scale" validate:"required"`
	DeliveryDate  string             `yaml:"deliveryDate" validate:"omitempty,deliverydate"`
	Count         *int               `yaml:"count" default:"1" validate:"gte=0"`
	Priority      string             `yaml:"priority" default:"NORMAL" validate:"oneof=HIGH NORMAL LOW"`
	RollingStocks []yamlRollingStock `yaml:"rollingStocks" validate:"required,min=1,dive"`
	Prices        []yamlPriceInfo    `yaml:"prices" validate:"dive"`
}

type yamlPriceInfo struct {
	Shop  string `yaml:"shop" validate:"required"`
	Price string `yaml:"price" validate:"required"`
}

// LoadWishList reads and parses a wish list file.
func LoadWishList(path string) (core.WishList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.WishList{}, fmt.Errorf("read wish list: %w", err)
	}
	w, err := ParseWishList(data)
	if err != nil {
		return core.WishList{}, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// ParseWishList decodes a wish list document.
func ParseWishList(data []byte) (core.WishList, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return core.WishList{}, ErrEmptyFile
	}
	var doc yamlWishList
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.WishList{}, fmt.Errorf("decode yaml: %w", err)
	}
	if _, err := parseModifiedAt(doc.ModifiedAt); err != nil {
		return core.WishList{}, err
	}

	w := core.WishList{
		Name:    doc.Name,
		Version: doc.Version,
		Items:   make([]core.WishListItem, 0, len(doc.Elements)),
	}
	for i := range doc.Elements {
		elem := &doc.Elements[i]
		it, err := elem.toItem()
		if err != nil {
			return core.WishList{}, fmt.Errorf("element %d (%s %s): %w", i+1, elem.Brand, elem.ItemNumber, err)
		}
		w.Items = append(w.Items, it)
	}
	return w, nil
}

func (e *yamlWishListItem) toItem() (core.WishListItem, error) {
	if err := prepare(e); err != nil {
		return core.WishListItem{}, err
	}
	category, err := itemCategory(e.RollingStocks)
	if err != nil {
		return core.WishListItem{}, err
	}
	catalog, err := catalogInfo(e.Brand, e.ItemNumber, e.Description, e.PowerMethod, e.Scale, e.DeliveryDate, e.RollingStocks)
	if err != nil {
		return core.WishListItem{}, err
	}
	priority, err := core.ParsePriority(e.Priority)
	if err != nil {
		return core.WishListItem{}, err
	}

	prices := make([]core.PriceInfo, 0, len(e.Prices))
	for _, p := range e.Prices {
		price, err := core.ParseMoney(p.Price)
		if err != nil {
			return core.WishListItem{}, fmt.Errorf("price %q at %s: %w", p.Price, p.Shop, err)
		}
		prices = append(prices, core.PriceInfo{Shop: p.Shop, Price: price})
	}

	return core.WishListItem{
		Category: category,
		Catalog:  catalog,
		Count:    *e.Count,
		Priority: priority,
		Prices:   prices,
	}, nil
}
