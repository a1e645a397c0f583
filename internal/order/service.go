package order

import (
	"context"
	"strings"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/validate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// moneyScale and maxTotal match the NUMERIC(12, 2) total column.
const moneyScale = 2

var maxTotal = decimal.New(1, 10)

// StockKeeper applies guarded stock decrements. product.Service satisfies it.
type StockKeeper interface {
	DecrementStock(ctx context.Context, items []product.StockItem) ([]product.StockResult, error)
}

// Notifier is told about every committed order. It must not block and
// must not fail the caller.
type Notifier interface {
	OrderCreated(ctx context.Context, o Order)
}

type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*Created, error)
	List(ctx context.Context) (*Partition, error)
	Get(ctx context.Context, id string) (*Order, error)
	MarkDelivered(ctx context.Context, id string) (*Order, error)
}

type service struct {
	repo     Repository
	stock    StockKeeper
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, stock StockKeeper, notifier Notifier) Service {
	return &service{repo: repo, stock: stock, notifier: notifier, now: time.Now}
}

// Create validates the checkout payload, applies guarded stock decrements,
// persists the order and hands it to the notifier.
//
// Line items whose product is gone or short on stock are still recorded;
// their outcome is reported in StockResults. There is no compensation of
// applied decrements if the order insert fails.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*Created, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range input.Products {
		if !item.Price.IsPositive() {
			return nil, ErrInvalidLinePrice
		}
		if !item.Price.Equal(item.Price.Round(moneyScale)) {
			return nil, ErrLinePriceScale
		}
		total = total.Add(item.Subtotal())
	}
	if total.GreaterThanOrEqual(maxTotal) {
		return nil, ErrTotalTooLarge
	}
	if input.Total != nil && !input.Total.Equal(total) {
		log.Warn("client total differs from computed total",
			zap.String("client_total", input.Total.String()),
			zap.String("computed_total", total.String()),
		)
	}

	stockItems := make([]product.StockItem, len(input.Products))
	for i, item := range input.Products {
		stockItems[i] = product.StockItem{ProductID: item.ProductID, Size: item.Size, Quantity: item.Quantity}
	}
	results, err := s.stock.DecrementStock(ctx, stockItems)
	if err != nil {
		log.Error("stock decrement failed", zap.Error(err))
		return nil, err
	}

	o := &Order{
		ID:             uuid.New(),
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          strings.TrimSpace(input.Email),
		Phone:          strings.TrimSpace(input.Phone),
		Address:        strings.TrimSpace(input.Address),
		City:           strings.TrimSpace(input.City),
		PostalCode:     strings.TrimSpace(input.PostalCode),
		Notes:          input.Notes,
		Products:       input.Products,
		Total:          total,
		ShippingMethod: input.ShippingMethod,
		PaymentMethod:  input.PaymentMethod,
		CreatedAt:      s.now(),
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = DefaultPaymentMethod
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to persist order",
			zap.Error(err),
			zap.Int("decrements_applied", countApplied(results)),
		)
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Int("line_items", len(o.Products)),
		zap.String("total", o.Total.String()),
		zap.Int("decrements_applied", countApplied(results)),
	)

	s.notifier.OrderCreated(ctx, *o)

	return &Created{Order: *o, StockResults: results}, nil
}

func countApplied(results []product.StockResult) int {
	n := 0
	for _, r := range results {
		if r.Applied() {
			n++
		}
	}
	return n
}

// List returns every order partitioned by delivery state.
func (s *service) List(ctx context.Context) (*Partition, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	p := &Partition{Pending: []Order{}, Delivered: []Order{}}
	for _, o := range orders {
		if o.IsDelivered {
			p.Delivered = append(p.Delivered, o)
		} else {
			p.Pending = append(p.Pending, o)
		}
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	orderID, err := product.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	orderID, err := product.ParseID(id)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.MarkDelivered(ctx, orderID)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order marked delivered",
		zap.String("layer", "service"),
		zap.String("order_id", o.ID.String()),
	)
	return o, nil
}
