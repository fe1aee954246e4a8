package checkout

// Origin names the page a checkout was started from.
type Origin string

const (
	OriginCart          Origin = "cart"
	OriginBuyNowProduct Origin = "buy_now_product"
	OriginBuyNowListing Origin = "buy_now_listing"
)

func (o Origin) Valid() bool {
	switch o {
	case OriginCart, OriginBuyNowProduct, OriginBuyNowListing:
		return true
	}
	return false
}

// UsesCart reports whether the line items come from the shopper's cart.
// "Buy now" origins carry their own items and leave the cart alone.
func (o Origin) UsesCart() bool {
	return o == OriginCart
}
