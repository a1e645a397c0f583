package order

import "storefront-be/internal/apperr"

var (
	ErrOrderNotFound = apperr.NotFound("order not found")

	ErrInvalidLinePrice = apperr.Validation("line item price must be a positive number")
	ErrLinePriceScale   = apperr.Validation("line item price must have at most 2 decimal places")
	ErrTotalTooLarge    = apperr.Validation("order total is too large")
)
