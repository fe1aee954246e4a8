package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrCartLocked      = errors.New("cart is locked while checkout is in progress")
)
