package product

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultImageColor = "#000000"

// MaxQuantity is the largest stock count or requested quantity a counter
// column can hold.
const MaxQuantity = math.MaxInt32

type Category string

// Categories is the closed set of garment types a product may belong to.
var Categories = []Category{
	"robe",
	"sweatshirt à capuche",
	"jupe",
	"chemise",
	"pull",
	"pantalon",
	"top",
	"maillots de bain",
}

type Image struct {
	ImageURL string `json:"imageUrl"`
	Color    string `json:"color"`
}

// Quantities holds the per-size stock counters. Every counter is >= 0.
type Quantities struct {
	XS   int `json:"xsQuantity"`
	S    int `json:"sQuantity"`
	M    int `json:"mQuantity"`
	L    int `json:"lQuantity"`
	XL   int `json:"xlQuantity"`
	XXL  int `json:"xxlQuantity"`
	XXXL int `json:"xxxlQuantity"`
}

type Product struct {
	ID              uuid.UUID        `json:"_id"`
	Title           string           `json:"title"`
	Price           decimal.Decimal  `json:"price"`
	PriceAfterSolde *decimal.Decimal `json:"priceAfterSolde,omitempty"`
	Category        Category         `json:"category"`
	Images          []Image          `json:"images"`
	Description     string           `json:"description"`
	Quantities
	EurQuantities map[string]int `json:"eurQuantities,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.PriceAfterSolde != nil && p.PriceAfterSolde.IsPositive() {
		return *p.PriceAfterSolde
	}
	return p.Price
}

// StockItem is one requested decrement: a product, a size label and a count.
type StockItem struct {
	ProductID string `json:"_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type StockStatus string

const (
	StockApplied          StockStatus = "applied"
	StockProductMissing   StockStatus = "product_missing"
	StockInsufficient     StockStatus = "insufficient_stock"
	StockInvalidSize      StockStatus = "invalid_size"
	StockInvalidQuantity  StockStatus = "invalid_quantity"
	StockInvalidProductID StockStatus = "invalid_product_id"
)

type StockResult struct {
	ProductID string      `json:"productId"`
	Size      string      `json:"size"`
	Quantity  int         `json:"quantity"`
	Status    StockStatus `json:"status"`
}

func (r StockResult) Applied() bool {
	return r.Status == StockApplied
}

// Decrement is a validated stock decrement handed to the repository. Either
// Size names a garment counter or EurLabel names a key of eur_quantities.
type Decrement struct {
	ProductID uuid.UUID
	Size      Size
	EurLabel  string
	Quantity  int
}

// Label is the size as the stock was requested.
func (d Decrement) Label() string {
	if d.EurLabel != "" {
		return d.EurLabel
	}
	return string(d.Size)
}

// DecrementOutcome is what the store observed for one Decrement.
type DecrementOutcome int

const (
	OutcomeApplied DecrementOutcome = iota
	OutcomeInsufficient
	OutcomeMissing
	// OutcomeUnknownSize: the product has no EUR counter under that label.
	OutcomeUnknownSize
)
