package documents

import "time"

// Status tracks settlement of payable documents. Non-payable kinds stay OPEN.
type Status string

const (
	StatusOpen Status = "OPEN"
	StatusPaid Status = "PAID"
	StatusVoid Status = "VOID"
)

// Document is one billing document of any kind. All monetary fields are
// derived server-side from the line collection on every mutation.
type Document struct {
	ID              int64      `json:"id"`
	Kind            Kind       `json:"kind"`
	DocNumber       string     `json:"docNumber"`
	PartyID         int64      `json:"partyId"`
	IssueDate       time.Time  `json:"issueDate"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Status          Status     `json:"status"`
	Subtotal        float64    `json:"subtotal"`
	TaxAmount       float64    `json:"taxAmount"`
	ShippingCharges float64    `json:"shippingCharges"`
	GrandTotal      float64    `json:"grandTotal"`
	Balance         float64    `json:"balance"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Lines           []Line     `json:"items,omitempty"`
}

// Line is one stored row of a document.
type Line struct {
	ID              int64   `json:"id"`
	DocumentID      int64   `json:"-"`
	ItemID          int64   `json:"itemId"`
	Unit            string  `json:"unit"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"price"`
	DiscountPercent float64 `json:"discountPercent"`
	LineTotal       float64 `json:"total"`
	Description     string  `json:"description"`
	LineOrder       int     `json:"-"`
}

// DocumentWithParty decorates a document with its counterparty name for
// list pages.
type DocumentWithParty struct {
	Document
	PartyName string `json:"partyName"`
}
