package payments

import "time"

// Payment settles part of an invoice balance. Application happens
// server-side in the same transaction that records the payment.
type Payment struct {
	ID         int64     `json:"id"`
	ReceiptRef string    `json:"receiptRef"`
	DocumentID int64     `json:"documentId"`
	Amount     float64   `json:"amount"`
	PaidAt     time.Time `json:"paidAt"`
	Method     string    `json:"method"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PaymentWithDocument decorates a payment with invoice context for lists.
type PaymentWithDocument struct {
	Payment
	DocNumber string `json:"docNumber"`
	PartyName string `json:"partyName"`
}
