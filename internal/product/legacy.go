package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// legacyNamespace seeds the deterministic ids given to imported records, so
// importing the same export twice yields the same product ids.
var legacyNamespace = uuid.MustParse("6f1c2a8e-3c1b-4d0e-9a57-6f0d7f1e2b44")

// legacyCategories maps the English labels of the first schema generation.
var legacyCategories = map[string]Category{
	"tshirt":   "top",
	"t-shirt":  "top",
	"hoodie":   "sweatshirt à capuche",
	"dress":    "robe",
	"skirt":    "jupe",
	"shirt":    "chemise",
	"sweater":  "pull",
	"trousers": "pantalon",
	"pants":    "pantalon",
	"swimwear": "maillots de bain",
}

// LegacyProduct accepts every historical product document shape: string
// counters with front/back images, numeric counters with front/back images,
// and the current image array. Mongo extended JSON ids and dates are allowed.
type LegacyProduct struct {
	ID              legacyID         `json:"_id"`
	Title           string           `json:"title"`
	Price           decimal.Decimal  `json:"price"`
	PriceAfterSolde *decimal.Decimal `json:"priceAfterSolde"`
	Category        string           `json:"category"`
	Description     string           `json:"description"`
	FrontImg        string           `json:"frontImg"`
	BackImg         string           `json:"backImg"`
	Images          []Image          `json:"images"`

	XSmall  flexInt `json:"xsmallQuantity"`
	Small   flexInt `json:"smallQuantity"`
	Medium  flexInt `json:"mediumQuantity"`
	Large   flexInt `json:"largeQuantity"`
	XLarge  flexInt `json:"xlargeQuantity"`
	XXLarge flexInt `json:"xxlargeQuantity"`

	XS   flexInt `json:"xsQuantity"`
	S    flexInt `json:"sQuantity"`
	M    flexInt `json:"mQuantity"`
	L    flexInt `json:"lQuantity"`
	XL   flexInt `json:"xlQuantity"`
	XXL  flexInt `json:"xxlQuantity"`
	XXXL flexInt `json:"xxxlQuantity"`

	EurQuantities map[string]flexInt `json:"eurQuantities"`

	CreatedAt legacyTime `json:"createdAt"`
	UpdatedAt legacyTime `json:"updatedAt"`
}

// FromLegacy converts a historical document to the canonical Product.
func FromLegacy(l LegacyProduct) (Product, error) {
	p := Product{
		Title:       strings.TrimSpace(l.Title),
		Price:       l.Price,
		Description: strings.TrimSpace(l.Description),
		CreatedAt:   l.CreatedAt.Time,
		UpdatedAt:   l.UpdatedAt.Time,
	}

	if l.ID.raw != "" {
		p.ID = uuid.NewSHA1(legacyNamespace, []byte(l.ID.raw))
	} else {
		p.ID = uuid.New()
	}

	if p.Title == "" {
		return Product{}, ErrTitleRequired
	}
	if !p.Price.IsPositive() {
		return Product{}, ErrInvalidPrice
	}
	if l.PriceAfterSolde != nil && l.PriceAfterSolde.IsPositive() {
		sale := *l.PriceAfterSolde
		p.PriceAfterSolde = &sale
	}

	category, ok := ParseCategory(l.Category)
	if !ok {
		category, ok = legacyCategories[strings.ToLower(strings.TrimSpace(l.Category))]
	}
	if !ok {
		return Product{}, fmt.Errorf("legacy product %q: unknown category %q", l.Title, l.Category)
	}
	p.Category = category

	switch {
	case len(l.Images) > 0:
		p.Images = make([]Image, 0, len(l.Images))
		for _, img := range l.Images {
			if img.Color == "" {
				img.Color = DefaultImageColor
			}
			p.Images = append(p.Images, img)
		}
	default:
		p.Images = []Image{}
		for _, url := range []string{l.FrontImg, l.BackImg} {
			if url != "" {
				p.Images = append(p.Images, Image{ImageURL: url, Color: DefaultImageColor})
			}
		}
	}

	p.Quantities = Quantities{
		XS:   pick(l.XS, l.XSmall),
		S:    pick(l.S, l.Small),
		M:    pick(l.M, l.Medium),
		L:    pick(l.L, l.Large),
		XL:   pick(l.XL, l.XLarge),
		XXL:  pick(l.XXL, l.XXLarge),
		XXXL: pick(l.XXXL, flexInt{}),
	}

	if len(l.EurQuantities) > 0 {
		p.EurQuantities = make(map[string]int, len(l.EurQuantities))
		for label, n := range l.EurQuantities {
			p.EurQuantities[label] = n.nonNegative()
		}
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	return p, nil
}

// pick prefers the numeric counter of the newer schema when it was present.
func pick(current, legacy flexInt) int {
	if current.set {
		return current.nonNegative()
	}
	return legacy.nonNegative()
}

// flexInt decodes a counter stored either as a JSON number or as a string.
// Unparseable strings count as zero.
type flexInt struct {
	n   int
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	f.set = true

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			f.n = 0
			return nil
		}
		f.n = n
		return nil
	}

	var num float64
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	f.n = int(num)
	return nil
}

func (f flexInt) nonNegative() int {
	if f.n < 0 {
		return 0
	}
	return f.n
}

// legacyID accepts "abc" or {"$oid":"abc"}.
type legacyID struct {
	raw string
}

func (id *legacyID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		id.raw = s
		return nil
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &oid); err != nil {
		return err
	}
	id.raw = oid.OID
	return nil
}

// legacyTime accepts an RFC 3339 string or {"$date": ...} with either a
// string or epoch milliseconds inside.
type legacyTime struct {
	time.Time
}

func (t *legacyTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	if err := json.Unmarshal(wrapped.Date, &s); err == nil {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	var millis int64
	if err := json.Unmarshal(wrapped.Date, &millis); err != nil {
		return err
	}
	t.Time = time.UnixMilli(millis).UTC()
	return nil
}
