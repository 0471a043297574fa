package types

// Address is a saved service location as returned by the remote API.
type Address struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId,omitempty"`
	FullName     string  `json:"fullName,omitempty"`
	PhoneNo      string  `json:"phoneNo,omitempty"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2,omitempty"`
	City         string  `json:"city,omitempty"`
	Pincode      string  `json:"pincode,omitempty"`
	Label        string  `json:"label,omitempty"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	IsDefault    bool    `json:"isDefault,omitempty"`
}

// HasCoordinates reports whether slot lookups can use this address.
func (a Address) HasCoordinates() bool {
	return a.Latitude != 0 && a.Longitude != 0
}
