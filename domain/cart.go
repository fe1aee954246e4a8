package domain

import "github.com/shopspring/decimal"

// CartItem is one row of the server-side cart. Product is nil when the
// backend could not resolve the reference (deleted or hidden product).
type CartItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

func (i CartItem) Resolved() bool {
	return i.Product != nil
}

// ValidItems drops rows with an unresolved product or a non-positive quantity.
func ValidItems(items []CartItem) []CartItem {
	valid := make([]CartItem, 0, len(items))
	for _, item := range items {
		if !item.Resolved() || item.Quantity < 1 {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

// Total sums EffectivePrice * Quantity over resolved items.
func Total(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range ValidItems(items) {
		total = total.Add(item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// LineItem is the price snapshot sent to the backend when an order intent is created.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func LineItemsFrom(items []CartItem) []LineItem {
	valid := ValidItems(items)
	lines := make([]LineItem, len(valid))
	for i, item := range valid {
		lines[i] = LineItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Product.EffectivePrice().InexactFloat64(),
		}
	}
	return lines
}

// ToMinorUnits converts a major-unit amount (rupees) to minor units (paise).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
