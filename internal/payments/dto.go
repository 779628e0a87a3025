package payments

import "time"

type RecordPaymentRequest struct {
	// IdempotencyKey comes from the Idempotency-Key header, not the body.
	IdempotencyKey string    `json:"-"`
	DocumentID     int64     `json:"documentId" validate:"required,gt=0"`
	Amount         float64   `json:"amount" validate:"required,gt=0"`
	PaidAt         time.Time `json:"paidAt" validate:"required"`
	Method         string    `json:"method" validate:"required,max=50"`
	Note           *string   `json:"note,omitempty"`
}

type ListPaymentsRequest struct {
	DocumentID *int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int `validate:"gte=0,lte=1000"`
	Offset     int `validate:"gte=0"`
}
