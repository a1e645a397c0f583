package review

import (
	"context"
	"testing"

	"storefront-be/internal/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRepository) List(ctx context.Context, productID *uuid.UUID) ([]Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func validReview() CreateReviewInput {
	return CreateReviewInput{
		ProductID:   uuid.NewString(),
		Nom:         "Trabelsi",
		Prenom:      "Sana",
		Email:       "sana@example.com",
		Stars:       5,
		Commentaire: "Parfait",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*review.Review")).Return(nil)

		input := validReview()
		blank := "  "
		input.Tel = &blank

		rv, err := svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, input.ProductID, rv.ProductID.String())
		assert.Nil(t, rv.Tel)
		assert.NotEqual(t, uuid.Nil, rv.ID)
		assert.False(t, rv.CreatedAt.IsZero())
	})

	t.Run("StarsOutOfRange", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		for _, stars := range []int{0, 6, -1} {
			input := validReview()
			input.Stars = stars
			_, err := svc.Create(ctx, input)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "stars=%d", stars)
		}
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		input := validReview()
		input.Email = "sana"
		input.ProductID = "abc"
		input.Commentaire = ""
		_, err := svc.Create(ctx, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "productId must be a valid id")
		assert.Contains(t, err.Error(), "commentaire is required")
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("All", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("List", ctx, (*uuid.UUID)(nil)).Return([]Review{{Nom: "x"}}, nil)

		reviews, err := svc.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, reviews, 1)
	})

	t.Run("ByProduct", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		id := uuid.New()
		mockRepo.On("List", ctx, &id).Return([]Review{}, nil)

		_, err := svc.List(ctx, id.String())
		assert.NoError(t, err)
	})

	t.Run("InvalidProductID", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		_, err := svc.List(ctx, "x")
		assert.Equal(t, apperr.KindInvalidID, apperr.KindOf(err))
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)
	id := uuid.New()

	mockRepo.On("Delete", ctx, id).Return(ErrReviewNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, id.String()), ErrReviewNotFound)
	assert.Equal(t, apperr.KindInvalidID, apperr.KindOf(svc.Delete(ctx, "nope")))
}
