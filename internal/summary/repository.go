package summary

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents"
)

type kindAggregate struct {
	Count       int
	TotalBilled float64
	Outstanding float64
}

type Repository interface {
	AggregateKinds(ctx context.Context) (map[documents.Kind]kindAggregate, error)
	PaymentsSince(ctx context.Context, since time.Time) (float64, int, error)
	CountOpenInvoices(ctx context.Context) (int, error)
	CountParties(ctx context.Context, partyType contacts.PartyType) (int, error)
	CountItems(ctx context.Context) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) AggregateKinds(ctx context.Context) (map[documents.Kind]kindAggregate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, COUNT(*), COALESCE(SUM(grand_total), 0), COALESCE(SUM(balance), 0)
		FROM documents
		WHERE status <> 'VOID'
		GROUP BY kind
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[documents.Kind]kindAggregate)
	for rows.Next() {
		var kind documents.Kind
		var agg kindAggregate
		if err := rows.Scan(&kind, &agg.Count, &agg.TotalBilled, &agg.Outstanding); err != nil {
			return nil, err
		}
		out[kind] = agg
	}
	return out, rows.Err()
}

func (r *repository) PaymentsSince(ctx context.Context, since time.Time) (float64, int, error) {
	var total float64
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM payments
		WHERE paid_at >= $1
	`, since).Scan(&total, &count)
	return total, count, err
}

func (r *repository) CountOpenInvoices(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM documents WHERE kind = $1 AND status = $2
	`, documents.KindInvoice, documents.StatusOpen).Scan(&count)
	return count, err
}

func (r *repository) CountParties(ctx context.Context, partyType contacts.PartyType) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM parties WHERE type = $1
	`, partyType).Scan(&count)
	return count, err
}

func (r *repository) CountItems(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM catalog_items WHERE is_active
	`).Scan(&count)
	return count, err
}
