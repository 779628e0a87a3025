package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/documents"
	"github.com/ledgerline/ledgerline/internal/documents/calc"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Invalidator drops derived caches after a mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	invalidator Invalidator
	idempotency *shared.IdempotencyStore
	validate    *validator.Validate
}

func NewService(logger *slog.Logger, repo Repository, invalidator Invalidator, idem *shared.IdempotencyStore) *Service {
	return &Service{logger: logger, repo: repo, invalidator: invalidator, idempotency: idem, validate: validator.New()}
}

// Record stores a payment and applies it to the invoice balance in one
// transaction. The invoice row is locked so two concurrent payments cannot
// both pass the balance check.
func (s *Service) Record(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	payment := Payment{
		ReceiptRef: newReceiptRef(),
		DocumentID: req.DocumentID,
		Amount:     calc.Round2(req.Amount),
		PaidAt:     req.PaidAt,
		Method:     req.Method,
		Note:       req.Note,
	}

	idemInserted := false
	if s.idempotency != nil && req.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, req.IdempotencyKey, "payments"); err != nil {
			return nil, err
		}
		idemInserted = true
	}

	var paymentID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		invoice, err := repo.LockInvoice(ctx, req.DocumentID)
		if err != nil {
			return fmt.Errorf("load invoice: %w", err)
		}
		spec, ok := invoice.Kind.Spec()
		if !ok || !spec.Payable {
			return fmt.Errorf("%w: document %d is not payable", shared.ErrValidation, req.DocumentID)
		}
		if invoice.Status == documents.StatusVoid {
			return fmt.Errorf("%w: document %d is void", shared.ErrConflict, req.DocumentID)
		}
		if payment.Amount > invoice.Balance {
			return fmt.Errorf("%w: payment %.2f exceeds outstanding balance %.2f", shared.ErrValidation, payment.Amount, invoice.Balance)
		}

		id, err := repo.Insert(ctx, payment)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		paymentID = id

		balance := calc.Round2(invoice.Balance - payment.Amount)
		status := documents.StatusOpen
		if balance <= 0 {
			status = documents.StatusPaid
		}
		return repo.UpdateInvoiceBalance(ctx, req.DocumentID, balance, status)
	})
	if err != nil {
		if idemInserted {
			_ = s.idempotency.Delete(ctx, req.IdempotencyKey)
		}
		return nil, err
	}

	s.afterMutation(ctx)
	return s.repo.Get(ctx, paymentID)
}

// Void deletes a payment and restores the amount onto the invoice balance.
func (s *Service) Void(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		payment, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		invoice, err := repo.LockInvoice(ctx, payment.DocumentID)
		if err != nil {
			return fmt.Errorf("load invoice: %w", err)
		}

		if err := repo.Delete(ctx, id); err != nil {
			return err
		}

		balance := calc.Round2(invoice.Balance + payment.Amount)
		if balance > invoice.GrandTotal {
			balance = invoice.GrandTotal
		}
		status := documents.StatusOpen
		if balance <= 0 {
			status = documents.StatusPaid
		}
		return repo.UpdateInvoiceBalance(ctx, payment.DocumentID, balance, status)
	})
	if err != nil {
		return err
	}
	s.afterMutation(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListPaymentsRequest) ([]PaymentWithDocument, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}

func (s *Service) afterMutation(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("bump summary cache", slog.Any("error", err))
	}
}

func newReceiptRef() string {
	return "RCPT-" + strings.ToUpper(uuid.NewString()[:8])
}
