package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error)
	Create(ctx context.Context, doc Document) (int64, error)
	UpdateHeader(ctx context.Context, doc Document) error
	InsertLine(ctx context.Context, line Line) (int64, error)
	DeleteLines(ctx context.Context, documentID int64) error
	Delete(ctx context.Context, id int64) error
	GenerateNumber(ctx context.Context, kind Kind, date time.Time) (string, error)
	SumPayments(ctx context.Context, documentID int64) (float64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const documentColumns = `id, kind, doc_number, party_id, issue_date, due_date, status,
	subtotal, tax_amount, shipping_charges, grand_total, balance, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns), id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return doc, nil
}

func (r *repository) getLines(ctx context.Context, documentID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, item_id, unit, quantity, unit_price, discount_percent, line_total, description, line_order
		FROM document_lines
		WHERE document_id = $1
		ORDER BY line_order ASC, id ASC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var itemID *int64
		if err := rows.Scan(&l.ID, &l.DocumentID, &itemID, &l.Unit, &l.Quantity,
			&l.UnitPrice, &l.DiscountPercent, &l.LineTotal, &l.Description, &l.LineOrder); err != nil {
			return nil, err
		}
		if itemID != nil {
			l.ItemID = *itemID
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error) {
	conditions := []string{"d.kind = $1"}
	args := []interface{}{req.Kind}
	argPos := 2

	if req.PartyID != nil {
		conditions = append(conditions, fmt.Sprintf("d.party_id = $%d", argPos))
		args = append(args, *req.PartyID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("d.issue_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("d.issue_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(d.doc_number ILIKE $%d OR p.name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM documents d JOIN parties p ON d.party_id = p.id %s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT d.id, d.kind, d.doc_number, d.party_id, d.issue_date, d.due_date, d.status,
		       d.subtotal, d.tax_amount, d.shipping_charges, d.grand_total, d.balance,
		       d.notes, d.created_at, d.updated_at,
		       p.name AS party_name
		FROM documents d
		JOIN parties p ON d.party_id = p.id
		%s
		ORDER BY d.issue_date DESC, d.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []DocumentWithParty
	for rows.Next() {
		var d DocumentWithParty
		if err := rows.Scan(&d.ID, &d.Kind, &d.DocNumber, &d.PartyID, &d.IssueDate, &d.DueDate, &d.Status,
			&d.Subtotal, &d.TaxAmount, &d.ShippingCharges, &d.GrandTotal, &d.Balance,
			&d.Notes, &d.CreatedAt, &d.UpdatedAt, &d.PartyName); err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (kind, doc_number, party_id, issue_date, due_date, status,
			subtotal, tax_amount, shipping_charges, grand_total, balance, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id
	`, doc.Kind, doc.DocNumber, doc.PartyID, doc.IssueDate, doc.DueDate, doc.Status,
		doc.Subtotal, doc.TaxAmount, doc.ShippingCharges, doc.GrandTotal, doc.Balance, doc.Notes).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: %s", shared.ErrDuplicate, doc.DocNumber)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, doc Document) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET party_id = $2, issue_date = $3, due_date = $4, status = $5,
		    subtotal = $6, tax_amount = $7, shipping_charges = $8,
		    grand_total = $9, balance = $10, notes = $11, updated_at = NOW()
		WHERE id = $1
	`, doc.ID, doc.PartyID, doc.IssueDate, doc.DueDate, doc.Status,
		doc.Subtotal, doc.TaxAmount, doc.ShippingCharges, doc.GrandTotal, doc.Balance, doc.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line Line) (int64, error) {
	var itemID *int64
	if line.ItemID > 0 {
		itemID = &line.ItemID
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_lines (document_id, item_id, unit, quantity, unit_price, discount_percent, line_total, description, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, line.DocumentID, itemID, line.Unit, line.Quantity, line.UnitPrice,
		line.DiscountPercent, line.LineTotal, line.Description, line.LineOrder).Scan(&id)
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, documentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: document has recorded payments", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// sequenceUpsertSQL allocates the next per-kind, per-month sequence value.
// Its column list must match the document_sequences DDL in db.Schema.
const sequenceUpsertSQL = `
	INSERT INTO document_sequences (kind, period, last_value)
	VALUES ($1, $2, 1)
	ON CONFLICT (kind, period)
	DO UPDATE SET last_value = document_sequences.last_value + 1
	RETURNING last_value
`

// GenerateNumber allocates the next document number for the kind and month,
// e.g. INV-2608-0042.
func (r *repository) GenerateNumber(ctx context.Context, kind Kind, date time.Time) (string, error) {
	spec, ok := kind.Spec()
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, sequenceUpsertSQL, kind, period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", spec.Prefix, date.Format("0601"), seq), nil
}

func (r *repository) SumPayments(ctx context.Context, documentID int64) (float64, error) {
	var paid float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE document_id = $1`, documentID).Scan(&paid)
	return paid, err
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Kind, &d.DocNumber, &d.PartyID, &d.IssueDate, &d.DueDate, &d.Status,
		&d.Subtotal, &d.TaxAmount, &d.ShippingCharges, &d.GrandTotal, &d.Balance,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
