package contacts

import "time"

// PartyType discriminates clients from vendors.
type PartyType string

const (
	PartyClient PartyType = "CLIENT"
	PartyVendor PartyType = "VENDOR"
)

// Party represents a client or vendor.
type Party struct {
	ID        int64     `json:"id"`
	Type      PartyType `json:"type"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	TaxID     *string   `json:"taxId,omitempty"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
