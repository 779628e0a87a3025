package catalog

import "time"

// Item is a product or service with distinct sales and purchase unit prices.
type Item struct {
	ID                int64     `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	SalesUnitPrice    float64   `json:"salesUnitPrice"`
	PurchaseUnitPrice float64   `json:"purchaseUnitPrice"`
	Description       *string   `json:"description,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
