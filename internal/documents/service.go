package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents/calc"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// CatalogDirectory resolves catalog items for the lookup merge.
type CatalogDirectory interface {
	LookupFor(ctx context.Context, ids []int64) (calc.Lookup, error)
}

// Notifier is invoked after a payable document is stored. Implementations
// must not block the request path.
type Notifier interface {
	DocumentIssued(ctx context.Context, doc Document)
}

// Invalidator drops derived caches after a mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	logger      *slog.Logger
	repo        Repository
	partyRepo   contacts.Repository
	catalog     CatalogDirectory
	notifier    Notifier
	invalidator Invalidator
	idempotency *shared.IdempotencyStore
	validate    *validator.Validate
}

func NewService(logger *slog.Logger, repo Repository, partyRepo contacts.Repository, catalog CatalogDirectory, notifier Notifier, invalidator Invalidator, idem *shared.IdempotencyStore) *Service {
	return &Service{
		logger:      logger,
		repo:        repo,
		partyRepo:   partyRepo,
		catalog:     catalog,
		notifier:    notifier,
		invalidator: invalidator,
		idempotency: idem,
		validate:    validator.New(),
	}
}

// Create stores a new document. Line totals and document totals are derived
// from the raw payload inputs through the calculation engine; client-sent
// totals are never trusted.
func (s *Service) Create(ctx context.Context, kind Kind, req CreateDocumentRequest) (*Document, error) {
	spec, ok := kind.Spec()
	if !ok {
		return nil, fmt.Errorf("%w: unknown document kind %q", shared.ErrValidation, kind)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	if err := s.verifyParty(ctx, req.PartyID, spec); err != nil {
		return nil, err
	}

	sess, err := s.buildSession(ctx, spec, req.Items, req.TaxAmount, req.ShippingCharges)
	if err != nil {
		return nil, err
	}
	if err := sess.Submit(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	idemInserted := false
	if s.idempotency != nil && req.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, req.IdempotencyKey, "documents."+string(kind)); err != nil {
			return nil, err
		}
		idemInserted = true
	}

	totals := sess.Totals()
	doc := Document{
		Kind:            kind,
		PartyID:         req.PartyID,
		IssueDate:       req.IssueDate,
		DueDate:         req.DueDate,
		Status:          StatusOpen,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		ShippingCharges: totals.ShippingCharges,
		GrandTotal:      totals.GrandTotal,
		Balance:         totals.Balance,
		Notes:           req.Notes,
	}

	var documentID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, kind, req.IssueDate)
		if err != nil {
			return fmt.Errorf("generate doc number: %w", err)
		}
		doc.DocNumber = number

		id, err := repo.Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		documentID = id

		return insertSessionLines(ctx, repo, id, sess.Lines())
	})
	if err != nil {
		_ = sess.ServerReject()
		if idemInserted {
			_ = s.idempotency.Delete(ctx, req.IdempotencyKey)
		}
		return nil, err
	}
	_ = sess.ServerAccept()

	s.afterMutation(ctx)

	created, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if spec.Payable && s.notifier != nil {
		s.notifier.DocumentIssued(ctx, *created)
	}
	return created, nil
}

// Update replaces header adjustments and, when provided, the full line
// collection. Totals are always recomputed from the complete collection;
// the outstanding balance accounts for payments already recorded.
func (s *Service) Update(ctx context.Context, kind Kind, id int64, req UpdateDocumentRequest) (*Document, error) {
	spec, ok := kind.Spec()
	if !ok {
		return nil, fmt.Errorf("%w: unknown document kind %q", shared.ErrValidation, kind)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.getOfKind(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusVoid {
		return nil, fmt.Errorf("%w: document %s is void", shared.ErrConflict, existing.DocNumber)
	}

	if req.PartyID != nil && *req.PartyID != existing.PartyID {
		if err := s.verifyParty(ctx, *req.PartyID, spec); err != nil {
			return nil, err
		}
		existing.PartyID = *req.PartyID
	}
	if req.IssueDate != nil {
		existing.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		existing.DueDate = req.DueDate
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}

	tax := existing.TaxAmount
	shipping := existing.ShippingCharges
	if req.TaxAmount != nil {
		tax = *req.TaxAmount
	}
	if req.ShippingCharges != nil {
		shipping = *req.ShippingCharges
	}

	var newLines []calc.Line
	if req.Items != nil {
		sess, err := s.buildSession(ctx, spec, *req.Items, tax, shipping)
		if err != nil {
			return nil, err
		}
		if err := sess.Submit(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		newLines = sess.Lines()
		applyTotals(existing, sess.Totals())
	} else {
		// Header-only edit: re-derive totals from the stored collection so
		// tax or shipping changes roll up consistently.
		applyTotals(existing, calc.Compute(toCalcLines(existing.Lines), tax, shipping, spec.TaxShipping))
	}

	paid, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}
	if paid > existing.GrandTotal {
		return nil, fmt.Errorf("%w: grand total %.2f is below recorded payments %.2f", shared.ErrConflict, existing.GrandTotal, paid)
	}
	existing.Balance = calc.Round2(existing.GrandTotal - paid)
	existing.Status = StatusOpen
	if spec.Payable && existing.Balance <= 0 {
		existing.Status = StatusPaid
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, *existing); err != nil {
			return err
		}
		if newLines == nil {
			return nil
		}
		if err := repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		return insertSessionLines(ctx, repo, id, newLines)
	})
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	s.afterMutation(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Document, error) {
	return s.getOfKind(ctx, kind, id)
}

func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, kind Kind, id int64) error {
	if _, err := s.getOfKind(ctx, kind, id); err != nil {
		return err
	}
	paid, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return fmt.Errorf("sum payments: %w", err)
	}
	if paid > 0 {
		return fmt.Errorf("%w: document has recorded payments", shared.ErrConflict)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.afterMutation(ctx)
	return nil
}

// Void cancels a document while keeping it on the books. Documents with
// recorded payments cannot be voided until those payments are voided first.
func (s *Service) Void(ctx context.Context, kind Kind, id int64) error {
	doc, err := s.getOfKind(ctx, kind, id)
	if err != nil {
		return err
	}
	if doc.Status == StatusVoid {
		return fmt.Errorf("%w: document %s is already void", shared.ErrConflict, doc.DocNumber)
	}
	paid, err := s.repo.SumPayments(ctx, id)
	if err != nil {
		return fmt.Errorf("sum payments: %w", err)
	}
	if paid > 0 {
		return fmt.Errorf("%w: document has recorded payments", shared.ErrConflict)
	}

	doc.Status = StatusVoid
	doc.Balance = 0
	if err := s.repo.UpdateHeader(ctx, *doc); err != nil {
		return fmt.Errorf("void document: %w", err)
	}
	s.afterMutation(ctx)
	return nil
}

func (s *Service) getOfKind(ctx context.Context, kind Kind, id int64) (*Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Kind != kind {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (s *Service) verifyParty(ctx context.Context, partyID int64, spec KindSpec) error {
	party, err := s.partyRepo.Get(ctx, partyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: party %d not found", shared.ErrValidation, partyID)
		}
		return fmt.Errorf("verify party: %w", err)
	}
	if party.Type != spec.PartyType {
		return fmt.Errorf("%w: party %d is not a %s", shared.ErrValidation, partyID, spec.PartyType)
	}
	return nil
}

// buildSession replays the payload through an edit session: catalog merge
// first, then the explicit payload values, which always win when supplied.
// An unresolvable item id leaves the row's own values in place.
func (s *Service) buildSession(ctx context.Context, spec KindSpec, items []LineItemPayload, tax, shipping float64) (*calc.Session, error) {
	var itemIDs []int64
	for _, p := range items {
		if p.ItemID > 0 {
			itemIDs = append(itemIDs, p.ItemID)
		}
	}
	lookup, err := s.catalog.LookupFor(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	sess := calc.NewSession(calc.SessionOptions{
		PriceSource:     spec.PriceSource,
		WithAdjustments: spec.TaxShipping,
		Lookup:          lookup,
	})

	for _, p := range items {
		idx, err := sess.AddLine()
		if err != nil {
			return nil, err
		}
		if p.ItemID > 0 {
			applied, err := sess.SetItem(idx, p.ItemID)
			if err != nil {
				return nil, err
			}
			if !applied {
				s.logger.Warn("catalog item not found, keeping payload fields",
					slog.Int64("item_id", p.ItemID))
			}
		}
		line := sess.Lines()[idx]
		line.Quantity = p.Quantity
		line.DiscountPercent = p.DiscountPercent
		if p.Unit != "" {
			line.Unit = p.Unit
		}
		if p.Price > 0 {
			line.UnitPrice = p.Price
		}
		if p.Description != "" {
			line.Description = p.Description
		}
		if err := sess.SetLine(idx, line); err != nil {
			return nil, err
		}
	}

	if spec.TaxShipping {
		if err := sess.SetAdjustmentValues(tax, shipping); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (s *Service) afterMutation(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("bump summary cache", slog.Any("error", err))
	}
}

func insertSessionLines(ctx context.Context, repo Repository, documentID int64, lines []calc.Line) error {
	for i, l := range lines {
		line := Line{
			DocumentID:      documentID,
			ItemID:          l.ItemID,
			Unit:            l.Unit,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			LineTotal:       l.Total,
			Description:     l.Description,
			LineOrder:       i + 1,
		}
		if _, err := repo.InsertLine(ctx, line); err != nil {
			return fmt.Errorf("insert document line: %w", err)
		}
	}
	return nil
}

func applyTotals(doc *Document, t calc.Totals) {
	doc.Subtotal = t.Subtotal
	doc.TaxAmount = t.TaxAmount
	doc.ShippingCharges = t.ShippingCharges
	doc.GrandTotal = t.GrandTotal
}

func toCalcLines(lines []Line) []calc.Line {
	out := make([]calc.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, calc.Line{
			ItemID:          l.ItemID,
			Unit:            l.Unit,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			Description:     l.Description,
		})
	}
	return out
}
