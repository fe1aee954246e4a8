package domain

type AddressType string

const (
	AddressTypeHome  AddressType = "Home"
	AddressTypeWork  AddressType = "Work"
	AddressTypeOther AddressType = "Other"
)

type Address struct {
	ID             string      `json:"id,omitempty"`
	FullName       string      `json:"fullName"`
	Phone          string      `json:"phone"`
	AlternatePhone string      `json:"alternatePhone,omitempty"`
	HouseNumber    string      `json:"houseNumber"`
	Street         string      `json:"street"`
	Landmark       string      `json:"landmark,omitempty"`
	City           string      `json:"city"`
	State          string      `json:"state"`
	Pincode        string      `json:"pincode"`
	Type           AddressType `json:"type"`
	IsDefault      bool        `json:"isDefault"`
}

// DefaultAddressID returns the id of the first address flagged as default,
// or "" when none is flagged.
func DefaultAddressID(addresses []Address) string {
	for _, a := range addresses {
		if a.IsDefault {
			return a.ID
		}
	}
	return ""
}
