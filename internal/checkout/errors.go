package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrNoAddressSelected  = errors.New("select a delivery address to continue")
	ErrUnknownAddress     = errors.New("address not found")
	ErrUnknownOrigin      = errors.New("unknown checkout origin")
	ErrStaleAttempt       = errors.New("checkout attempt is no longer current")
	ErrIllegalTransition  = errors.New("illegal transition of checkout status")
)
