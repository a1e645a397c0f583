package product

import "storefront-be/internal/apperr"

var (
	ErrProductNotFound = apperr.NotFound("product not found")

	ErrTitleRequired    = apperr.Validation("title is required")
	ErrPriceRequired    = apperr.Validation("price is required")
	ErrCategoryRequired = apperr.Validation("category is required")
	ErrInvalidPrice     = apperr.Validation("price must be a positive number")
	ErrInvalidSalePrice = apperr.Validation("priceAfterSolde must be a positive number")
	ErrTooManyColors    = apperr.Validation("more colors than images")
)

const imageUploadFailed = "image upload failed"
