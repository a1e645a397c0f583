package transport

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/middleware"
	"storefront-be/internal/review"

	"github.com/gin-gonic/gin"
)

type reviewHandler struct {
	svc   review.Service
	admin middleware.TokenVerifier
}

func (h *reviewHandler) create(c *gin.Context) {
	var input review.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON payload")
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}

// list is public for one product's reviews; the full listing needs an
// admin token.
func (h *reviewHandler) list(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		if _, err := h.admin.Verify(auth.ExtractAccessToken(c.Request)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}

	reviews, err := h.svc.List(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *reviewHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
