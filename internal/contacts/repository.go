package contacts

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
	Get(ctx context.Context, id int64) (*Party, error)
	List(ctx context.Context, req ListPartiesRequest) ([]Party, int, error)
	Create(ctx context.Context, p Party) (int64, error)
	Update(ctx context.Context, p Party) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partyColumns = `id, type, name, email, phone, tax_id, address, city, country, notes, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Party, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM parties WHERE id = $1`, partyColumns), id)
	p, err := scanParty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, req ListPartiesRequest) ([]Party, int, error) {
	conditions := []string{"type = $1"}
	args := []interface{}{req.Type}
	argPos := 2

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argPos, argPos))
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM parties %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM parties %s ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d`,
		partyColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, 0, err
		}
		parties = append(parties, *p)
	}
	return parties, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Party) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO parties (type, name, email, phone, tax_id, address, city, country, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, NOW(), NOW())
		RETURNING id
	`, p.Type, p.Name, p.Email, p.Phone, p.TaxID, p.Address, p.City, p.Country, p.Notes).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, p Party) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE parties
		SET name = $2, email = $3, phone = $4, tax_id = $5, address = $6, city = $7,
		    country = $8, notes = $9, is_active = $10, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Email, p.Phone, p.TaxID, p.Address, p.City, p.Country, p.Notes, p.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: party is referenced by documents", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParty(row rowScanner) (*Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Type, &p.Name, &p.Email, &p.Phone, &p.TaxID,
		&p.Address, &p.City, &p.Country, &p.Notes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
