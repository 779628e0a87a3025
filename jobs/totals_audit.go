package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/documents"
	"github.com/ledgerline/ledgerline/internal/documents/calc"
)

// TotalsAuditJob re-derives stored document totals from their line rows and
// reports drift. Stored amounts are never corrected automatically; drift
// means a write path bypassed the calculation engine and deserves a human.
type TotalsAuditJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewTotalsAuditJob(pool *pgxpool.Pool, logger *slog.Logger) *TotalsAuditJob {
	return &TotalsAuditJob{pool: pool, logger: logger}
}

type auditRow struct {
	ID         int64
	Kind       documents.Kind
	DocNumber  string
	TaxAmount  float64
	Shipping   float64
	Subtotal   float64
	GrandTotal float64
}

// Handle processes TaskTotalsAudit tasks.
func (j *TotalsAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload TotalsAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	query := `
		SELECT id, kind, doc_number, tax_amount, shipping_charges, subtotal, grand_total
		FROM documents
		WHERE status <> 'VOID'`
	var args []interface{}
	if payload.Days > 0 {
		query += ` AND updated_at >= $1`
		args = append(args, time.Now().AddDate(0, 0, -payload.Days))
	}

	rows, err := j.pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var docs []auditRow
	for rows.Next() {
		var d auditRow
		if err := rows.Scan(&d.ID, &d.Kind, &d.DocNumber, &d.TaxAmount, &d.Shipping, &d.Subtotal, &d.GrandTotal); err != nil {
			return err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	scanned, drifted := 0, 0
	for _, d := range docs {
		lines, err := j.loadLines(ctx, d.ID)
		if err != nil {
			return err
		}
		spec, ok := d.Kind.Spec()
		if !ok {
			j.logger.Warn("totals audit: unknown kind", slog.Int64("document_id", d.ID), slog.String("kind", string(d.Kind)))
			continue
		}
		totals := calc.Compute(lines, d.TaxAmount, d.Shipping, spec.TaxShipping)
		scanned++
		if differs(totals.Subtotal, d.Subtotal) || differs(totals.GrandTotal, d.GrandTotal) {
			drifted++
			j.logger.Error("totals audit: drift detected",
				slog.Int64("document_id", d.ID),
				slog.String("doc_number", d.DocNumber),
				slog.Float64("stored_subtotal", d.Subtotal),
				slog.Float64("derived_subtotal", totals.Subtotal),
				slog.Float64("stored_grand_total", d.GrandTotal),
				slog.Float64("derived_grand_total", totals.GrandTotal))
		}
	}

	j.logger.Info("totals audit complete", slog.Int("scanned", scanned), slog.Int("drifted", drifted))
	return nil
}

func (j *TotalsAuditJob) loadLines(ctx context.Context, documentID int64) ([]calc.Line, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT COALESCE(item_id, 0), unit, quantity, unit_price, discount_percent, description
		FROM document_lines
		WHERE document_id = $1
		ORDER BY line_order
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []calc.Line
	for rows.Next() {
		var l calc.Line
		if err := rows.Scan(&l.ItemID, &l.Unit, &l.Quantity, &l.UnitPrice, &l.DiscountPercent, &l.Description); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func differs(a, b float64) bool {
	return math.Abs(a-b) >= 0.005
}
