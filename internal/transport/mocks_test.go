package transport

import (
	"context"

	"storefront-be/internal/auth"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/review"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, category string) ([]product.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input product.CreateInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, input product.UpdateInput) (*product.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) DecrementStock(ctx context.Context, items []product.StockItem) ([]product.StockResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.StockResult), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, input order.CreateOrderInput) (*order.Created, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Created), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context) (*order.Partition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Partition), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MarkDelivered(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, input review.CreateReviewInput) (*review.Review, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, productID string) ([]review.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]review.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// stubAuth accepts exactly one token.
type stubAuth struct {
	token   string
	session *auth.Session
	err     error
}

func (s *stubAuth) Login(context.Context, string) (*auth.Session, error) {
	return s.session, s.err
}

func (s *stubAuth) Verify(token string) (*auth.Claims, error) {
	if token == "" || token != s.token {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{Role: auth.RoleAdmin}, nil
}
