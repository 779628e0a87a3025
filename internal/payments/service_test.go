package payments

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/documents"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type memoryRepo struct {
	payments map[int64]*Payment
	invoices map[int64]*InvoiceState
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{payments: make(map[int64]*Payment), invoices: make(map[int64]*InvoiceState)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListPaymentsRequest) ([]PaymentWithDocument, int, error) {
	var out []PaymentWithDocument
	for _, p := range r.payments {
		out = append(out, PaymentWithDocument{Payment: *p})
	}
	return out, len(out), nil
}

func (r *memoryRepo) Insert(ctx context.Context, p Payment) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	r.payments[p.ID] = &p
	return p.ID, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.payments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *memoryRepo) LockInvoice(ctx context.Context, documentID int64) (*InvoiceState, error) {
	st, ok := r.invoices[documentID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *st
	return &copied, nil
}

func (r *memoryRepo) UpdateInvoiceBalance(ctx context.Context, documentID int64, balance float64, status documents.Status) error {
	st, ok := r.invoices[documentID]
	if !ok {
		return shared.ErrNotFound
	}
	st.Balance = balance
	st.Status = status
	return nil
}

type noopInvalidator struct{}

func (noopInvalidator) Bump(ctx context.Context) error { return nil }

func newTestService(repo *memoryRepo) *Service {
	return NewService(slog.Default(), repo, noopInvalidator{}, nil)
}

func request(docID int64, amount float64) RecordPaymentRequest {
	return RecordPaymentRequest{
		DocumentID: docID,
		Amount:     amount,
		PaidAt:     time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Method:     "BANK",
	}
}

func TestRecordAppliesBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices[1] = &InvoiceState{ID: 1, Kind: documents.KindInvoice, GrandTotal: 570, Balance: 570, Status: documents.StatusOpen}
	service := newTestService(repo)

	payment, err := service.Record(context.Background(), request(1, 100))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(payment.ReceiptRef, "RCPT-"))
	require.InDelta(t, 100.0, payment.Amount, 0.001)

	require.InDelta(t, 470.0, repo.invoices[1].Balance, 0.001)
	require.Equal(t, documents.StatusOpen, repo.invoices[1].Status)
}

func TestRecordSettlesInvoice(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices[1] = &InvoiceState{ID: 1, Kind: documents.KindInvoice, GrandTotal: 570, Balance: 570, Status: documents.StatusOpen}
	service := newTestService(repo)

	_, err := service.Record(context.Background(), request(1, 570))
	require.NoError(t, err)
	require.InDelta(t, 0.0, repo.invoices[1].Balance, 0.001)
	require.Equal(t, documents.StatusPaid, repo.invoices[1].Status)
}

func TestRecordRejectsOverpayment(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices[1] = &InvoiceState{ID: 1, Kind: documents.KindInvoice, GrandTotal: 570, Balance: 50, Status: documents.StatusOpen}
	service := newTestService(repo)

	_, err := service.Record(context.Background(), request(1, 50.01))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.payments)
}

func TestRecordRejectsNonPayableKind(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices[1] = &InvoiceState{ID: 1, Kind: documents.KindQuotation, GrandTotal: 200, Balance: 200, Status: documents.StatusOpen}
	service := newTestService(repo)

	_, err := service.Record(context.Background(), request(1, 100))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRecordRejectsVoidInvoice(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices[1] = &InvoiceState{ID: 1, Kind: documents.KindInvoice, GrandTotal: 570, Balance: 570, Status: documents.StatusVoid}
	service := newTestService(repo)

	_, err := service.Record(context.Background(), request(1, 100))
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestRecordRejectsUnknownDocument(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(repo)

	_, err := service.Record(context.Background(), request(99, 100))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVoidRestoresBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.invoices[1] = &InvoiceState{ID: 1, Kind: documents.KindInvoice, GrandTotal: 570, Balance: 570, Status: documents.StatusOpen}
	service := newTestService(repo)

	payment, err := service.Record(context.Background(), request(1, 570))
	require.NoError(t, err)
	require.Equal(t, documents.StatusPaid, repo.invoices[1].Status)

	require.NoError(t, service.Void(context.Background(), payment.ID))
	require.InDelta(t, 570.0, repo.invoices[1].Balance, 0.001)
	require.Equal(t, documents.StatusOpen, repo.invoices[1].Status)

	_, err = service.Get(context.Background(), payment.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
