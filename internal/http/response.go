package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"railists/internal/core"
	"railists/internal/log"
	"railists/internal/render"
	"railists/internal/report"
)

// contentTypes maps render formats to response media types.
var contentTypes = map[render.Format]string{
	render.FormatText: "text/plain; charset=utf-8",
	render.FormatCSV:  "text/csv; charset=utf-8",
	render.FormatPDF:  "application/pdf",
	render.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: w.Header().Get(log.RequestIDHeader),
	})
}

// writeTables renders the tables into a buffer first so a render failure
// still yields a clean 500.
func writeTables(w http.ResponseWriter, r *http.Request, format render.Format, filename string, tables ...report.Table) {
	var buf bytes.Buffer
	if err := render.Write(&buf, format, tables...); err != nil {
		log.FromContext(r.Context()).Error("Report rendering failed",
			log.FieldOperation, log.OpRender,
			"format", string(format),
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if format != render.FormatText {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+"."+string(format)+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// JSON views. Amounts are strings with two fraction digits so clients
// never see binary floating point.

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Amount: m.Amount.StringFixed(2), Currency: m.Currency}
}

type locomotiveJSON struct {
	ClassName    string `json:"class_name"`
	RoadNumber   string `json:"road_number"`
	Series       string `json:"series,omitempty"`
	Livery       string `json:"livery,omitempty"`
	Control      string `json:"control,omitempty"`
	DccInterface string `json:"dcc_interface,omitempty"`
	WithDecoder  bool   `json:"with_decoder"`
}

type itemJSON struct {
	Category     string          `json:"category"`
	Brand        string          `json:"brand"`
	ItemNumber   string          `json:"item_number"`
	Description  string          `json:"description"`
	Scale        string          `json:"scale"`
	PowerMethod  string          `json:"power_method"`
	Epoch        string          `json:"epoch,omitempty"`
	DeliveryDate string          `json:"delivery_date,omitempty"`
	Count        int             `json:"count"`
	Shop         string          `json:"shop,omitempty"`
	PurchasedAt  string          `json:"purchased_at,omitempty"`
	Price        moneyJSON       `json:"price"`
	Locomotive   *locomotiveJSON `json:"locomotive,omitempty"`
}

type collectionJSON struct {
	Description string     `json:"description"`
	Version     int        `json:"version"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
	Size        int        `json:"size"`
	Items       []itemJSON `json:"items"`
}

func toCollectionJSON(c core.Collection) collectionJSON {
	out := collectionJSON{
		Description: c.Description,
		Version:     c.Version,
		Size:        c.Len(),
		Items:       make([]itemJSON, 0, c.Len()),
	}
	if !c.ModifiedAt.IsZero() {
		modified := c.ModifiedAt
		out.ModifiedAt = &modified
	}
	for _, it := range c.SortedItems() {
		item := itemJSON{
			Category:     it.Category().Tag(),
			Brand:        it.Brand(),
			ItemNumber:   it.ItemNumber(),
			Description:  it.Description(),
			Scale:        it.Scale(),
			PowerMethod:  string(it.PowerMethod()),
			Epoch:        it.Epoch(),
			DeliveryDate: it.DeliveryDate(),
			Count:        it.Count(),
			Shop:         it.Shop(),
			Price:        toMoneyJSON(it.Value()),
		}
		if d := it.PurchasedAt(); !d.IsZero() {
			item.PurchasedAt = d.Format("2006-01-02")
		}
		if loco, ok := it.Locomotive(); ok {
			item.Locomotive = &locomotiveJSON{
				ClassName:    loco.ClassName,
				RoadNumber:   loco.RoadNumber,
				Series:       loco.Series,
				Livery:       loco.Livery,
				Control:      string(loco.Control),
				DccInterface: string(loco.DccInterface),
				WithDecoder:  loco.WithDecoder(),
			}
		}
		out.Items = append(out.Items, item)
	}
	return out
}

type statJSON struct {
	Count int    `json:"count"`
	Value string `json:"value"`
}

func toStatJSON(count int, value decimal.Decimal) statJSON {
	return statJSON{Count: count, Value: value.StringFixed(2)}
}

type statsRowJSON struct {
	Year       string              `json:"year"`
	Categories map[string]statJSON `json:"categories"`
	Total      statJSON            `json:"total"`
}

type statsJSON struct {
	Currency   string         `json:"currency"`
	Years      []statsRowJSON `json:"years"`
	Total      statsRowJSON   `json:"total"`
	Undated    statJSON       `json:"undated"`
	TotalValue moneyJSON      `json:"total_value"`
	Size       int            `json:"size"`
}

func toStatsRowJSON(row core.YearlyStatRow) statsRowJSON {
	out := statsRowJSON{
		Year:       row.Label(),
		Categories: make(map[string]statJSON, core.NumCategories),
		Total:      toStatJSON(row.TotalCount, row.TotalValue),
	}
	for _, c := range core.Categories() {
		stat := row.Stat(c)
		out.Categories[c.Tag()] = toStatJSON(stat.Count, stat.Value)
	}
	return out
}

func toStatsJSON(s core.CollectionStats) statsJSON {
	out := statsJSON{
		Currency:   s.TotalValue.Currency,
		Years:      make([]statsRowJSON, 0, len(s.Years)),
		Total:      toStatsRowJSON(s.Total),
		Undated:    toStatJSON(s.Undated.Count, s.Undated.Value),
		TotalValue: toMoneyJSON(s.TotalValue),
		Size:       s.Size,
	}
	for _, row := range s.Years {
		out.Years = append(out.Years, toStatsRowJSON(row))
	}
	return out
}

type depotCardJSON struct {
	ClassName    string `json:"class_name"`
	RoadNumber   string `json:"road_number"`
	Series       string `json:"series,omitempty"`
	Livery       string `json:"livery,omitempty"`
	Brand        string `json:"brand"`
	ItemNumber   string `json:"item_number"`
	WithDecoder  bool   `json:"with_decoder"`
	DccInterface string `json:"dcc_interface,omitempty"`
}

type depotJSON struct {
	Size        int             `json:"size"`
	Locomotives []depotCardJSON `json:"locomotives"`
}

func toDepotJSON(d core.Depot) depotJSON {
	out := depotJSON{Size: d.Len(), Locomotives: make([]depotCardJSON, 0, d.Len())}
	for _, card := range d.Locomotives {
		out.Locomotives = append(out.Locomotives, depotCardJSON{
			ClassName:    card.ClassName,
			RoadNumber:   card.RoadNumber,
			Series:       card.Series,
			Livery:       card.Livery,
			Brand:        card.Brand,
			ItemNumber:   card.ItemNumber,
			WithDecoder:  card.WithDecoder,
			DccInterface: string(card.DccInterface),
		})
	}
	return out
}

type offerJSON struct {
	Shop  string    `json:"shop"`
	Price moneyJSON `json:"price"`
}

type wishJSON struct {
	Category    string      `json:"category"`
	Brand       string      `json:"brand"`
	ItemNumber  string      `json:"item_number"`
	Description string      `json:"description"`
	Count       int         `json:"count"`
	Priority    string      `json:"priority"`
	Prices      []offerJSON `json:"prices"`
}

type wishListJSON struct {
	Name    string            `json:"name"`
	Version int               `json:"version"`
	Items   []wishJSON        `json:"items"`
	Budget  map[string]string `json:"budget"`
}

func toWishListJSON(w core.WishList) wishListJSON {
	out := wishListJSON{
		Name:    w.Name,
		Version: w.Version,
		Items:   make([]wishJSON, 0, len(w.Items)),
		Budget:  make(map[string]string),
	}
	for _, it := range w.SortedItems() {
		wish := wishJSON{
			Category:    it.Category.Tag(),
			Brand:       it.Catalog.Brand,
			ItemNumber:  it.Catalog.ItemNumber,
			Description: it.Catalog.Description,
			Count:       it.Count,
			Priority:    it.Priority.String(),
			Prices:      make([]offerJSON, 0, len(it.Prices)),
		}
		for _, p := range it.Prices {
			wish.Prices = append(wish.Prices, offerJSON{Shop: p.Shop, Price: toMoneyJSON(p.Price)})
		}
		out.Items = append(out.Items, wish)
	}

	budget := core.ComputeBudget(w)
	for _, p := range core.Priorities() {
		out.Budget[p.String()] = budget.ByPriority(p).StringFixed(2)
	}
	out.Budget["Total"] = budget.Total().StringFixed(2)
	return out
}
