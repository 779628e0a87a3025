package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Item, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]Item, error)
	List(ctx context.Context, req ListItemsRequest) ([]Item, int, error)
	Create(ctx context.Context, it Item) (int64, error)
	Update(ctx context.Context, it Item) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, sku, name, unit, sales_unit_price, purchase_unit_price, description, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM catalog_items WHERE id = $1`, itemColumns), id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// GetMany resolves a batch of item ids. Unknown ids are simply absent from
// the result, letting callers degrade gracefully.
func (r *repository) GetMany(ctx context.Context, ids []int64) (map[int64]Item, error) {
	result := make(map[int64]Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM catalog_items WHERE id = ANY($1)`, itemColumns), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result[it.ID] = *it
	}
	return result, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListItemsRequest) ([]Item, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM catalog_items %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM catalog_items %s ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d`,
		itemColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	return items, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, it Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO catalog_items (sku, name, unit, sales_unit_price, purchase_unit_price, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id
	`, it.SKU, it.Name, it.Unit, it.SalesUnitPrice, it.PurchaseUnitPrice, descriptionOrEmpty(it.Description)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: sku %s", shared.ErrDuplicate, it.SKU)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, it Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE catalog_items
		SET name = $2, unit = $3, sales_unit_price = $4, purchase_unit_price = $5,
		    description = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
	`, it.ID, it.Name, it.Unit, it.SalesUnitPrice, it.PurchaseUnitPrice, descriptionOrEmpty(it.Description), it.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalog_items WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: item is referenced by documents", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// descriptionOrEmpty maps a nil description to "". The column is NOT NULL;
// an omitted description must never fail the write.
func descriptionOrEmpty(d *string) string {
	if d == nil {
		return ""
	}
	return *d
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Unit, &it.SalesUnitPrice,
		&it.PurchaseUnitPrice, &it.Description, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
