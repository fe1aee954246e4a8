package domain

import "time"

// OrderIntent is the provisional order the backend creates before payment.
// Amount is in minor currency units.
type OrderIntent struct {
	LocalOrderID    string `json:"localOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	ProviderOrderID string `json:"providerOrderId"`
}

type VerificationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type OrderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID            string      `json:"id"`
	Items         []OrderLine `json:"items"`
	Amount        float64     `json:"amount"`
	Currency      string      `json:"currency"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	AddressID     string      `json:"addressId"`
	CreatedAt     time.Time   `json:"createdAt"`
}
