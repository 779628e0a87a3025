package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/documents"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// InvoiceState is the slice of a document a payment transaction needs.
type InvoiceState struct {
	ID         int64
	Kind       documents.Kind
	GrandTotal float64
	Balance    float64
	Status     documents.Status
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) ([]PaymentWithDocument, int, error)
	Insert(ctx context.Context, p Payment) (int64, error)
	Delete(ctx context.Context, id int64) error
	// LockInvoice reads the target document under a row lock so concurrent
	// payments cannot both pass the balance check.
	LockInvoice(ctx context.Context, documentID int64) (*InvoiceState, error)
	UpdateInvoiceBalance(ctx context.Context, documentID int64, balance float64, status documents.Status) error
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

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := r.db.QueryRow(ctx, `
		SELECT id, receipt_ref, document_id, amount, paid_at, method, note, created_at
		FROM payments WHERE id = $1
	`, id).Scan(&p.ID, &p.ReceiptRef, &p.DocumentID, &p.Amount, &p.PaidAt, &p.Method, &p.Note, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListPaymentsRequest) ([]PaymentWithDocument, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.DocumentID != nil {
		conditions = append(conditions, fmt.Sprintf("pm.document_id = $%d", argPos))
		args = append(args, *req.DocumentID)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("pm.paid_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("pm.paid_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(pm.receipt_ref ILIKE $%d OR d.doc_number ILIKE $%d OR p.name ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM payments pm
		JOIN documents d ON pm.document_id = d.id
		JOIN parties p ON d.party_id = p.id
		%s`, whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT pm.id, pm.receipt_ref, pm.document_id, pm.amount, pm.paid_at, pm.method, pm.note, pm.created_at,
		       d.doc_number, p.name AS party_name
		FROM payments pm
		JOIN documents d ON pm.document_id = d.id
		JOIN parties p ON d.party_id = p.id
		%s
		ORDER BY pm.paid_at DESC, pm.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []PaymentWithDocument
	for rows.Next() {
		var p PaymentWithDocument
		if err := rows.Scan(&p.ID, &p.ReceiptRef, &p.DocumentID, &p.Amount, &p.PaidAt, &p.Method,
			&p.Note, &p.CreatedAt, &p.DocNumber, &p.PartyName); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func (r *repository) Insert(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (receipt_ref, document_id, amount, paid_at, method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id
	`, p.ReceiptRef, p.DocumentID, p.Amount, p.PaidAt, p.Method, p.Note).Scan(&id)
	return id, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) LockInvoice(ctx context.Context, documentID int64) (*InvoiceState, error) {
	var st InvoiceState
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, grand_total, balance, status
		FROM documents WHERE id = $1
		FOR UPDATE
	`, documentID).Scan(&st.ID, &st.Kind, &st.GrandTotal, &st.Balance, &st.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *repository) UpdateInvoiceBalance(ctx context.Context, documentID int64, balance float64, status documents.Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents SET balance = $2, status = $3, updated_at = NOW() WHERE id = $1
	`, documentID, balance, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
