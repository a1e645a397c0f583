package review

import (
	"context"
	"strings"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/validate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateReviewInput) (*Review, error)
	// List returns every review when productID is empty.
	List(ctx context.Context, productID string) ([]Review, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, input CreateReviewInput) (*Review, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	rv := &Review{
		ID:          uuid.New(),
		ProductID:   uuid.MustParse(input.ProductID),
		Nom:         strings.TrimSpace(input.Nom),
		Prenom:      strings.TrimSpace(input.Prenom),
		Email:       strings.TrimSpace(input.Email),
		Stars:       input.Stars,
		Commentaire: strings.TrimSpace(input.Commentaire),
		CreatedAt:   s.now(),
	}
	if input.Tel != nil && strings.TrimSpace(*input.Tel) != "" {
		tel := strings.TrimSpace(*input.Tel)
		rv.Tel = &tel
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		logger.FromCtx(ctx).Error("failed to create review",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return nil, err
	}
	return rv, nil
}

func (s *service) List(ctx context.Context, productID string) ([]Review, error) {
	if strings.TrimSpace(productID) == "" {
		return s.repo.List(ctx, nil)
	}
	id, err := product.ParseID(productID)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	reviewID, err := product.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("review deleted", zap.String("review_id", reviewID.String()))
	return nil
}
