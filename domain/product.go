package domain

import "github.com/shopspring/decimal"

type Image struct {
	URL        string `json:"url"`
	ExternalID string `json:"externalId,omitempty"`
}

type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	Images          []Image          `json:"images"`
	Category        string           `json:"category"`
	Unit            string           `json:"unit"`
}

// EffectivePrice is the discounted price when present, otherwise the unit price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.UnitPrice
}
