package catalog

type CreateItemRequest struct {
	SKU               string  `json:"sku" validate:"required,max=50"`
	Name              string  `json:"name" validate:"required,max=200"`
	Unit              string  `json:"unit" validate:"required,max=20"`
	SalesUnitPrice    float64 `json:"salesUnitPrice" validate:"gte=0"`
	PurchaseUnitPrice float64 `json:"purchaseUnitPrice" validate:"gte=0"`
	Description       *string `json:"description,omitempty"`
}

type UpdateItemRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Unit              *string  `json:"unit,omitempty" validate:"omitempty,max=20"`
	SalesUnitPrice    *float64 `json:"salesUnitPrice,omitempty" validate:"omitempty,gte=0"`
	PurchaseUnitPrice *float64 `json:"purchaseUnitPrice,omitempty" validate:"omitempty,gte=0"`
	Description       *string  `json:"description,omitempty"`
	IsActive          *bool    `json:"isActive,omitempty"`
}

type ListItemsRequest struct {
	Search   string
	IsActive *bool
	Limit    int `validate:"gte=0,lte=1000"`
	Offset   int `validate:"gte=0"`
}
