package documents

import "time"

// LineItemPayload is the wire shape of one document row. Field names are
// part of the client contract and must not change.
type LineItemPayload struct {
	ItemID          int64   `json:"itemId"`
	Unit            string  `json:"unit" validate:"max=20"`
	Quantity        float64 `json:"quantity" validate:"gte=0"`
	Price           float64 `json:"price" validate:"gte=0"`
	DiscountPercent float64 `json:"discountPercent" validate:"gte=0,lte=100"`
	// Total is the client-rounded line total. It is accepted for
	// compatibility but recomputed server-side; the stored value is always
	// derived from quantity, price and discount.
	Total       float64 `json:"total"`
	Description string  `json:"description"`
}

type CreateDocumentRequest struct {
	// IdempotencyKey comes from the Idempotency-Key header, not the body.
	IdempotencyKey  string            `json:"-"`
	PartyID         int64             `json:"partyId" validate:"required,gt=0"`
	IssueDate       time.Time         `json:"issueDate" validate:"required"`
	DueDate         *time.Time        `json:"dueDate,omitempty"`
	TaxAmount       float64           `json:"taxAmount" validate:"gte=0"`
	ShippingCharges float64           `json:"shippingCharges" validate:"gte=0"`
	Notes           *string           `json:"notes,omitempty"`
	Items           []LineItemPayload `json:"items" validate:"required,min=1,dive"`
}

type UpdateDocumentRequest struct {
	PartyID         *int64             `json:"partyId,omitempty" validate:"omitempty,gt=0"`
	IssueDate       *time.Time         `json:"issueDate,omitempty"`
	DueDate         *time.Time         `json:"dueDate,omitempty"`
	TaxAmount       *float64           `json:"taxAmount,omitempty" validate:"omitempty,gte=0"`
	ShippingCharges *float64           `json:"shippingCharges,omitempty" validate:"omitempty,gte=0"`
	Notes           *string            `json:"notes,omitempty"`
	Items           *[]LineItemPayload `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

type ListDocumentsRequest struct {
	Kind     Kind
	PartyID  *int64
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    int `validate:"gte=0,lte=1000"`
	Offset   int `validate:"gte=0"`
}
