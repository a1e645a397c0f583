package review

import "storefront-be/internal/apperr"

var ErrReviewNotFound = apperr.NotFound("review not found")
