package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) MarkDelivered(ctx context.Context, id uuid.UUID) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

type MockStockKeeper struct {
	mock.Mock
}

func (m *MockStockKeeper) DecrementStock(ctx context.Context, items []product.StockItem) ([]product.StockResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.StockResult), args.Error(1)
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []Order
}

func (n *recordingNotifier) OrderCreated(_ context.Context, o Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
}

// memRepository keeps orders in memory so read-after-write flows can be
// exercised without SQL.
type memRepository struct {
	mu     sync.Mutex
	orders []Order
}

func (r *memRepository) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append([]Order{*o}, r.orders...)
	return nil
}

func (r *memRepository) List(context.Context) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Order(nil), r.orders...), nil
}

func (r *memRepository) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memRepository) MarkDelivered(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].IsDelivered = true
			o := r.orders[i]
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func validInput(items ...LineItem) CreateOrderInput {
	return CreateOrderInput{
		FirstName:  "Amira",
		LastName:   "Ben Salah",
		Email:      "amira@example.com",
		Phone:      "+21620000000",
		Address:    "12 rue de Carthage",
		City:       "Tunis",
		PostalCode: "1000",
		Products:   items,
	}
}

func appliedFor(items []product.StockItem) []product.StockResult {
	out := make([]product.StockResult, len(items))
	for i, it := range items {
		out[i] = product.StockResult{ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity, Status: product.StockApplied}
	}
	return out
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("TotalIsPriceTimesQuantity", func(t *testing.T) {
		mockRepo := new(MockRepository)
		stock := new(MockStockKeeper)
		notifier := &recordingNotifier{}
		svc := NewService(mockRepo, stock, notifier)

		productID := uuid.NewString()
		item := LineItem{ProductID: productID, Title: "Top", Image: "https://cdn/t.jpg", Size: "M", Quantity: 3, Price: decimal.RequireFromString("50")}
		clientTotal := decimal.NewFromInt(1)

		stockItems := []product.StockItem{{ProductID: productID, Size: "M", Quantity: 3}}
		stock.On("DecrementStock", ctx, stockItems).Return(appliedFor(stockItems), nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		input := validInput(item)
		input.Total = &clientTotal

		created, err := svc.Create(ctx, input)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(150).Equal(created.Total))
		assert.False(t, created.IsDelivered)
		assert.Equal(t, DefaultPaymentMethod, created.PaymentMethod)
		assert.Len(t, created.StockResults, 1)
		assert.True(t, created.StockResults[0].Applied())

		require.Len(t, notifier.orders, 1)
		assert.Equal(t, created.ID, notifier.orders[0].ID)
	})

	t.Run("RecordsOrderWhenStockCannotBeApplied", func(t *testing.T) {
		mockRepo := new(MockRepository)
		stock := new(MockStockKeeper)
		svc := NewService(mockRepo, stock, &recordingNotifier{})

		items := []LineItem{
			{ProductID: uuid.NewString(), Title: "Deleted", Size: "S", Quantity: 1, Price: decimal.NewFromInt(10)},
			{ProductID: uuid.NewString(), Title: "Short", Size: "L", Quantity: 5, Price: decimal.NewFromInt(20)},
			{ProductID: uuid.NewString(), Title: "Shoes", Size: "42", Quantity: 1, Price: decimal.NewFromInt(30)},
		}
		stock.On("DecrementStock", ctx, mock.Anything).Return([]product.StockResult{
			{Status: product.StockProductMissing},
			{Status: product.StockInsufficient},
			{Status: product.StockInvalidSize},
		}, nil)
		mockRepo.On("Create", ctx, mock.Anything).Return(nil)

		created, err := svc.Create(ctx, validInput(items...))
		require.NoError(t, err)
		assert.Len(t, created.Products, 3)
		assert.True(t, decimal.NewFromInt(140).Equal(created.Total))
		assert.Equal(t, product.StockProductMissing, created.StockResults[0].Status)
		mockRepo.AssertCalled(t, "Create", ctx, mock.Anything)
	})

	t.Run("ValidationHappensBeforeStock", func(t *testing.T) {
		mockRepo := new(MockRepository)
		stock := new(MockStockKeeper)
		svc := NewService(mockRepo, stock, &recordingNotifier{})

		input := validInput()
		_, err := svc.Create(ctx, input)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "products")

		input = validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 1, Price: decimal.NewFromInt(1)})
		input.Email = "not-an-email"
		input.City = ""
		_, err = svc.Create(ctx, input)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "email")
		assert.Contains(t, err.Error(), "city")

		_, err = svc.Create(ctx, validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 1}))
		assert.ErrorIs(t, err, ErrInvalidLinePrice)

		_, err = svc.Create(ctx, validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 2147483648, Price: decimal.NewFromInt(1)}))
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "quantity")

		stock.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("TotalMustFitMoneyColumn", func(t *testing.T) {
		mockRepo := new(MockRepository)
		stock := new(MockStockKeeper)
		svc := NewService(mockRepo, stock, &recordingNotifier{})

		_, err := svc.Create(ctx, validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 1, Price: decimal.RequireFromString("0.001")}))
		assert.ErrorIs(t, err, ErrLinePriceScale)

		_, err = svc.Create(ctx, validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 2000000000, Price: decimal.NewFromInt(10)}))
		assert.ErrorIs(t, err, ErrTotalTooLarge)

		stock.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("StockStoreFailureAbortsBeforeInsert", func(t *testing.T) {
		mockRepo := new(MockRepository)
		stock := new(MockStockKeeper)
		notifier := &recordingNotifier{}
		svc := NewService(mockRepo, stock, notifier)

		stock.On("DecrementStock", ctx, mock.Anything).Return(nil, apperr.Store("decrement", errors.New("db down")))

		_, err := svc.Create(ctx, validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 1, Price: decimal.NewFromInt(1)}))
		assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, notifier.orders)
	})

	t.Run("PersistFailureSkipsNotification", func(t *testing.T) {
		mockRepo := new(MockRepository)
		stock := new(MockStockKeeper)
		notifier := &recordingNotifier{}
		svc := NewService(mockRepo, stock, notifier)

		stock.On("DecrementStock", ctx, mock.Anything).Return([]product.StockResult{{Status: product.StockApplied}}, nil)
		mockRepo.On("Create", ctx, mock.Anything).Return(apperr.Store("insert order", errors.New("db down")))

		_, err := svc.Create(ctx, validInput(LineItem{ProductID: "p", Title: "x", Size: "M", Quantity: 1, Price: decimal.NewFromInt(1)}))
		assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
		assert.Empty(t, notifier.orders)
	})
}

func TestService_SnapshotSurvivesProductDeletion(t *testing.T) {
	ctx := context.Background()
	repo := &memRepository{}
	stock := new(MockStockKeeper)
	svc := NewService(repo, stock, &recordingNotifier{})

	item := LineItem{ProductID: uuid.NewString(), Title: "Robe", Image: "https://cdn/r.jpg", Size: "M", Quantity: 1, Price: decimal.NewFromInt(45)}
	stock.On("DecrementStock", ctx, mock.Anything).Return([]product.StockResult{{Status: product.StockApplied}}, nil)

	created, err := svc.Create(ctx, validInput(item))
	require.NoError(t, err)

	// The catalog no longer knows the product; the order is unaffected.
	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []LineItem{item}, got.Products)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("PartitionsExactly", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, nil, nil)

		now := time.Now()
		orders := []Order{
			{ID: uuid.New(), CreatedAt: now},
			{ID: uuid.New(), CreatedAt: now.Add(-time.Minute), IsDelivered: true},
			{ID: uuid.New(), CreatedAt: now.Add(-2 * time.Minute)},
			{ID: uuid.New(), CreatedAt: now.Add(-3 * time.Minute), IsDelivered: true},
			{ID: uuid.New(), CreatedAt: now.Add(-4 * time.Minute)},
		}
		mockRepo.On("List", ctx).Return(orders, nil)

		p, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, p.Pending, 3)
		assert.Len(t, p.Delivered, 2)
		assert.Equal(t, len(orders), len(p.Pending)+len(p.Delivered))
		for _, o := range p.Pending {
			assert.False(t, o.IsDelivered)
		}
		for _, o := range p.Delivered {
			assert.True(t, o.IsDelivered)
		}
		assert.Equal(t, orders[0].ID, p.Pending[0].ID)
		assert.Equal(t, orders[1].ID, p.Delivered[0].ID)
	})

	t.Run("EmptyPartitionsAreNotNil", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, nil, nil)
		mockRepo.On("List", ctx).Return([]Order{}, nil)

		p, err := svc.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, p.Pending)
		assert.NotNil(t, p.Delivered)
	})

	t.Run("StoreError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, nil, nil)
		mockRepo.On("List", ctx).Return(nil, apperr.Store("list orders", errors.New("down")))

		_, err := svc.List(ctx)
		assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
	})
}

func TestService_MarkDelivered(t *testing.T) {
	ctx := context.Background()

	t.Run("IdempotentOnRealState", func(t *testing.T) {
		id := uuid.New()
		repo := &memRepository{orders: []Order{{ID: id}}}
		svc := NewService(repo, nil, nil)

		for i := 0; i < 2; i++ {
			o, err := svc.MarkDelivered(ctx, id.String())
			require.NoError(t, err)
			assert.True(t, o.IsDelivered)
		}

		p, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, p.Pending)
		assert.Len(t, p.Delivered, 1)
	})

	t.Run("InvalidIDNeverQueries", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo, nil, nil)

		_, err := svc.MarkDelivered(ctx, "123")
		assert.Equal(t, apperr.KindInvalidID, apperr.KindOf(err))
		mockRepo.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := NewService(&memRepository{}, nil, nil)

		_, err := svc.MarkDelivered(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
