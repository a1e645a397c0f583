package order

import (
	"time"

	"storefront-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "Cash on Delivery"

// LineItem is a snapshot of a cart entry taken when the order is placed. It
// stays valid after the product it references is edited or deleted.
type LineItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	Image     string          `json:"image"`
	Size      string          `json:"size" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0,max=2147483647"`
	Price     decimal.Decimal `json:"price"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Order struct {
	ID             uuid.UUID       `json:"_id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	PostalCode     string          `json:"postalCode"`
	Notes          *string         `json:"notes,omitempty"`
	Products       []LineItem      `json:"products"`
	Total          decimal.Decimal `json:"total"`
	ShippingMethod string          `json:"shippingMethod"`
	PaymentMethod  string          `json:"paymentMethod"`
	IsDelivered    bool            `json:"isDelivered"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (o *Order) CustomerName() string {
	return o.FirstName + " " + o.LastName
}

// CreateOrderInput is the checkout payload. Total is the client's own
// computation; the stored total is always recomputed from the line items.
type CreateOrderInput struct {
	FirstName      string           `json:"firstName" validate:"required"`
	LastName       string           `json:"lastName" validate:"required"`
	Email          string           `json:"email" validate:"required,email"`
	Phone          string           `json:"phone" validate:"required"`
	Address        string           `json:"address" validate:"required"`
	City           string           `json:"city" validate:"required"`
	PostalCode     string           `json:"postalCode" validate:"required"`
	Notes          *string          `json:"notes"`
	Products       []LineItem       `json:"products" validate:"min=1,dive"`
	Total          *decimal.Decimal `json:"total"`
	ShippingMethod string           `json:"shippingMethod"`
	PaymentMethod  string           `json:"paymentMethod"`
}

// Created is the result of a checkout: the persisted order plus what
// happened to stock for each line item, in line item order.
type Created struct {
	Order
	StockResults []product.StockResult `json:"stockResults"`
}

// Partition splits orders by delivery state, both newest first.
type Partition struct {
	Pending   []Order `json:"pendingOrders"`
	Delivered []Order `json:"deliveredOrders"`
}
