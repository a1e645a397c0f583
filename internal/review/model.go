package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating of one product. The product reference is not
// enforced; reviews outlive deleted products.
type Review struct {
	ID          uuid.UUID `json:"_id"`
	ProductID   uuid.UUID `json:"productId"`
	Nom         string    `json:"nom"`
	Prenom      string    `json:"prenom"`
	Email       string    `json:"email"`
	Tel         *string   `json:"tel,omitempty"`
	Stars       int       `json:"stars"`
	Commentaire string    `json:"commentaire"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateReviewInput struct {
	ProductID   string  `json:"productId" validate:"required,uuid"`
	Nom         string  `json:"nom" validate:"required"`
	Prenom      string  `json:"prenom" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Tel         *string `json:"tel"`
	Stars       int     `json:"stars" validate:"min=1,max=5"`
	Commentaire string  `json:"commentaire" validate:"required"`
}
