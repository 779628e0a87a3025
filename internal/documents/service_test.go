package documents

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents/calc"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type memoryRepo struct {
	docs     map[int64]*Document
	payments map[int64]float64
	nextID   int64
	nextSeq  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[int64]*Document), payments: make(map[int64]float64)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *doc
	copied.Lines = append([]Line(nil), doc.Lines...)
	return &copied, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error) {
	var out []DocumentWithParty
	for _, doc := range r.docs {
		if doc.Kind == req.Kind {
			out = append(out, DocumentWithParty{Document: *doc})
		}
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, doc Document) (int64, error) {
	r.nextID++
	doc.ID = r.nextID
	r.docs[doc.ID] = &doc
	return doc.ID, nil
}

func (r *memoryRepo) UpdateHeader(ctx context.Context, doc Document) error {
	existing, ok := r.docs[doc.ID]
	if !ok {
		return shared.ErrNotFound
	}
	lines := existing.Lines
	*existing = doc
	existing.Lines = lines
	return nil
}

func (r *memoryRepo) InsertLine(ctx context.Context, line Line) (int64, error) {
	doc, ok := r.docs[line.DocumentID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	line.ID = int64(len(doc.Lines) + 1)
	doc.Lines = append(doc.Lines, line)
	return line.ID, nil
}

func (r *memoryRepo) DeleteLines(ctx context.Context, documentID int64) error {
	doc, ok := r.docs[documentID]
	if !ok {
		return shared.ErrNotFound
	}
	doc.Lines = nil
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.docs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memoryRepo) GenerateNumber(ctx context.Context, kind Kind, date time.Time) (string, error) {
	spec, _ := kind.Spec()
	r.nextSeq++
	return fmt.Sprintf("%s-%s-%04d", spec.Prefix, date.Format("0601"), r.nextSeq), nil
}

func (r *memoryRepo) SumPayments(ctx context.Context, documentID int64) (float64, error) {
	return r.payments[documentID], nil
}

type memoryParties struct {
	parties map[int64]*contacts.Party
}

func (r *memoryParties) Get(ctx context.Context, id int64) (*contacts.Party, error) {
	p, ok := r.parties[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryParties) List(ctx context.Context, req contacts.ListPartiesRequest) ([]contacts.Party, int, error) {
	return nil, 0, nil
}

func (r *memoryParties) Create(ctx context.Context, p contacts.Party) (int64, error) { return 0, nil }
func (r *memoryParties) Update(ctx context.Context, p contacts.Party) error          { return nil }
func (r *memoryParties) Delete(ctx context.Context, id int64) error                  { return nil }

type stubCatalog struct {
	items map[int64]calc.Item
}

func (c *stubCatalog) LookupFor(ctx context.Context, ids []int64) (calc.Lookup, error) {
	return func(id int64) (calc.Item, bool) {
		it, ok := c.items[id]
		return it, ok
	}, nil
}

type recordingNotifier struct {
	issued []Document
}

func (n *recordingNotifier) DocumentIssued(ctx context.Context, doc Document) {
	n.issued = append(n.issued, doc)
}

type countingInvalidator struct {
	bumps int
}

func (i *countingInvalidator) Bump(ctx context.Context) error {
	i.bumps++
	return nil
}

type fixture struct {
	repo        *memoryRepo
	notifier    *recordingNotifier
	invalidator *countingInvalidator
	service     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemoryRepo()
	parties := &memoryParties{parties: map[int64]*contacts.Party{
		1: {ID: 1, Type: contacts.PartyClient, Name: "Acme Trading"},
		2: {ID: 2, Type: contacts.PartyVendor, Name: "Delta Paper"},
	}}
	catalog := &stubCatalog{items: map[int64]calc.Item{
		10: {ID: 10, Unit: "pcs", SalesUnitPrice: 100, PurchaseUnitPrice: 70, Description: "Widget"},
		11: {ID: 11, Unit: "box", SalesUnitPrice: 250, PurchaseUnitPrice: 180, Description: "Crate"},
	}}
	notifier := &recordingNotifier{}
	invalidator := &countingInvalidator{}
	service := NewService(slog.Default(), repo, parties, catalog, notifier, invalidator, nil)
	return &fixture{repo: repo, notifier: notifier, invalidator: invalidator, service: service}
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:         1,
		IssueDate:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		TaxAmount:       20,
		ShippingCharges: 30,
		Items: []LineItemPayload{
			{ItemID: 10, Quantity: 3, DiscountPercent: 10},
			{ItemID: 11, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "INV-2608-0001", doc.DocNumber)
	require.Equal(t, StatusOpen, doc.Status)
	require.InDelta(t, 520.0, doc.Subtotal, 0.001)
	require.InDelta(t, 20.0, doc.TaxAmount, 0.001)
	require.InDelta(t, 30.0, doc.ShippingCharges, 0.001)
	require.InDelta(t, 570.0, doc.GrandTotal, 0.001)
	require.InDelta(t, 570.0, doc.Balance, 0.001)

	require.Len(t, doc.Lines, 2)
	require.InDelta(t, 270.0, doc.Lines[0].LineTotal, 0.001)
	require.Equal(t, "pcs", doc.Lines[0].Unit)
	require.Equal(t, "Widget", doc.Lines[0].Description)
	require.InDelta(t, 250.0, doc.Lines[1].LineTotal, 0.001)

	require.Len(t, f.notifier.issued, 1)
	require.Equal(t, 1, f.invalidator.bumps)
}

func TestCreateQuotationIgnoresAdjustments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindQuotation, CreateDocumentRequest{
		PartyID:         1,
		IssueDate:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		TaxAmount:       20,
		ShippingCharges: 30,
		Items:           []LineItemPayload{{ItemID: 10, Quantity: 2}},
	})
	require.NoError(t, err)

	require.Equal(t, "QT-2608-0001", doc.DocNumber)
	require.InDelta(t, 200.0, doc.Subtotal, 0.001)
	require.Zero(t, doc.TaxAmount)
	require.Zero(t, doc.ShippingCharges)
	require.InDelta(t, 200.0, doc.GrandTotal, 0.001)
	require.Empty(t, f.notifier.issued)
}

func TestCreatePurchaseOrderUsesPurchasePrice(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindPurchaseOrder, CreateDocumentRequest{
		PartyID:   2,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 4}},
	})
	require.NoError(t, err)
	require.InDelta(t, 280.0, doc.Lines[0].LineTotal, 0.001)
}

func TestCreateUnknownItemKeepsPayloadFields(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemPayload{
			{ItemID: 999, Unit: "kg", Quantity: 2, Price: 42.50, Description: "Custom blend"},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	require.Equal(t, "kg", doc.Lines[0].Unit)
	require.Equal(t, "Custom blend", doc.Lines[0].Description)
	require.InDelta(t, 85.0, doc.Lines[0].LineTotal, 0.001)
}

func TestCreatePayloadOverridesCatalogValues(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineItemPayload{
			{ItemID: 10, Quantity: 1, Price: 90, Description: "Negotiated rate"},
		},
	})
	require.NoError(t, err)

	require.InDelta(t, 90.0, doc.Lines[0].UnitPrice, 0.001)
	require.Equal(t, "Negotiated rate", doc.Lines[0].Description)
}

func TestCreateRejectsPartyTypeMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   2,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRecomputesBalanceAgainstPayments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:         1,
		IssueDate:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		TaxAmount:       20,
		ShippingCharges: 30,
		Items: []LineItemPayload{
			{ItemID: 10, Quantity: 3, DiscountPercent: 10},
			{ItemID: 11, Quantity: 1},
		},
	})
	require.NoError(t, err)
	f.repo.payments[doc.ID] = 100

	items := []LineItemPayload{
		{ItemID: 10, Quantity: 3, DiscountPercent: 10},
		{ItemID: 11, Quantity: 1},
	}
	updated, err := f.service.Update(context.Background(), KindInvoice, doc.ID, UpdateDocumentRequest{Items: &items})
	require.NoError(t, err)
	require.InDelta(t, 570.0, updated.GrandTotal, 0.001)
	require.InDelta(t, 470.0, updated.Balance, 0.001)
	require.Equal(t, StatusOpen, updated.Status)
}

func TestUpdateRejectsTotalBelowPayments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 11, Quantity: 2}},
	})
	require.NoError(t, err)
	f.repo.payments[doc.ID] = 400

	items := []LineItemPayload{{ItemID: 10, Quantity: 1}}
	_, err = f.service.Update(context.Background(), KindInvoice, doc.ID, UpdateDocumentRequest{Items: &items})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateHeaderOnlyRecomputesFromStoredLines(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 2}},
	})
	require.NoError(t, err)

	tax := 15.0
	updated, err := f.service.Update(context.Background(), KindInvoice, doc.ID, UpdateDocumentRequest{TaxAmount: &tax})
	require.NoError(t, err)
	require.InDelta(t, 200.0, updated.Subtotal, 0.001)
	require.InDelta(t, 215.0, updated.GrandTotal, 0.001)
	require.Len(t, updated.Lines, 1)
}

func TestDeleteBlockedByPayments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	f.repo.payments[doc.ID] = 50

	err = f.service.Delete(context.Background(), KindInvoice, doc.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	f.repo.payments[doc.ID] = 0
	require.NoError(t, f.service.Delete(context.Background(), KindInvoice, doc.ID))
	_, err = f.service.Get(context.Background(), KindInvoice, doc.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVoidDocument(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 11, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Void(context.Background(), KindInvoice, doc.ID))

	voided, err := f.service.Get(context.Background(), KindInvoice, doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusVoid, voided.Status)
	require.Zero(t, voided.Balance)
	require.InDelta(t, 500.0, voided.GrandTotal, 0.001)

	err = f.service.Void(context.Background(), KindInvoice, doc.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestVoidBlockedByPayments(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	f.repo.payments[doc.ID] = 50

	err = f.service.Void(context.Background(), KindInvoice, doc.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateRejectsVoidDocument(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindInvoice, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.Void(context.Background(), KindInvoice, doc.ID))

	notes := "late edit"
	_, err = f.service.Update(context.Background(), KindInvoice, doc.ID, UpdateDocumentRequest{Notes: &notes})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestGetRejectsKindMismatch(t *testing.T) {
	f := newFixture(t)

	doc, err := f.service.Create(context.Background(), KindQuotation, CreateDocumentRequest{
		PartyID:   1,
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Items:     []LineItemPayload{{ItemID: 10, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), KindInvoice, doc.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
