package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.SweetsRepository = (*SweetsRepository)(nil)

const sweetColumns = `
	sweet_id, name, description, price, category,
	image, stock, purchased_count, created_by, created_at`

type SweetsRepository struct {
	sqldb sqldb
}

func NewSweetsRepository(sqldb sqldb) SweetsRepository {
	return SweetsRepository{sqldb}
}

func (r SweetsRepository) CreateSweet(
	ctx context.Context, v domain.Sweet,
) error {
	const op = "SweetsRepository.CreateSweet"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO sweets (` + sweetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	_, err := r.sqldb.ExecContext(ctx, query,
		v.ID, v.Name, v.Description, v.Price, string(v.Category),
		v.Image, v.Stock, v.PurchasedCount, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r SweetsRepository) GetSweet(
	ctx context.Context, sweetID string,
) (domain.Sweet, error) {
	const op = "SweetsRepository.GetSweet"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE sweet_id = $1;`

	v, err := scanSweet(r.sqldb.QueryRowContext(ctx, query, sweetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (r SweetsRepository) GetSweets(
	ctx context.Context, sweetIDs []string,
) ([]domain.Sweet, error) {
	const op = "SweetsRepository.GetSweets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(sweetIDs) == 0 {
		return nil, nil
	}

	args := make([]any, len(sweetIDs))
	ph := make([]string, len(sweetIDs))
	for i, id := range sweetIDs {
		args[i] = id
		ph[i] = fmt.Sprintf("$%d", i+1)
	}

	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE sweet_id IN (` +
		strings.Join(ph, ", ") + `);`

	vs, err := r.querySweets(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r SweetsRepository) ListSweets(
	ctx context.Context,
) ([]domain.Sweet, error) {
	const op = "SweetsRepository.ListSweets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + sweetColumns + ` FROM sweets ORDER BY created_at DESC;`

	vs, err := r.querySweets(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r SweetsRepository) SearchSweets(
	ctx context.Context, f domain.SearchFilter,
) ([]domain.Sweet, error) {
	const op = "SweetsRepository.SearchSweets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		conds = append(conds, "name ILIKE "+arg("%"+f.Query+"%"))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(string(f.Category)))
	}
	if f.HasMin {
		conds = append(conds, "price >= "+arg(f.MinPrice))
	}
	if f.HasMax {
		conds = append(conds, "price <= "+arg(f.MaxPrice))
	}

	query := `SELECT ` + sweetColumns + ` FROM sweets`
	if len(conds) != 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name ASC;"

	vs, err := r.querySweets(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r SweetsRepository) UpdateSweet(
	ctx context.Context, sweetID string, upd domain.SweetUpdate,
) (domain.Sweet, error) {
	const op = "SweetsRepository.UpdateSweet"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE sweets
		SET name = $2, description = $3, price = $4, category = $5, image = $6
		WHERE sweet_id = $1
		RETURNING ` + sweetColumns + `;`

	v, err := scanSweet(r.sqldb.QueryRowContext(ctx, query,
		sweetID, upd.Name, upd.Description, upd.Price,
		string(upd.Category), upd.Image,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (r SweetsRepository) DeleteSweet(
	ctx context.Context, sweetID string,
) error {
	const op = "SweetsRepository.DeleteSweet"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.sqldb.ExecContext(ctx,
		`DELETE FROM sweets WHERE sweet_id = $1;`, sweetID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (r SweetsRepository) PopularSweets(
	ctx context.Context, limit int,
) ([]domain.Sweet, error) {
	const op = "SweetsRepository.PopularSweets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT ` + sweetColumns + `
		FROM sweets
		ORDER BY purchased_count DESC, created_at DESC
		LIMIT $1;`

	vs, err := r.querySweets(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// ReserveStock is the conditional decrement: the WHERE clause checks
// the precondition and the UPDATE applies both counter changes in one
// statement, so concurrent purchases can never drive stock negative.
func (r SweetsRepository) ReserveStock(
	ctx context.Context, sweetID string, quantity int,
) (domain.Sweet, error) {
	const op = "SweetsRepository.ReserveStock"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE sweets
		SET stock = stock - $2, purchased_count = purchased_count + $2
		WHERE sweet_id = $1 AND stock >= $2
		RETURNING ` + sweetColumns + `;`

	v, err := scanSweet(r.sqldb.QueryRowContext(ctx, query, sweetID, quantity))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	// The conditional update did not apply: either the sweet is gone
	// or the stock is short. Re-read to tell the two apart.
	var available int
	err = r.sqldb.QueryRowContext(ctx,
		`SELECT stock FROM sweets WHERE sweet_id = $1;`, sweetID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Sweet{}, fmt.Errorf("%s: %w", op,
		domain.InsufficientStockError{SweetID: sweetID, Available: available})
}

func (r SweetsRepository) AddStock(
	ctx context.Context, sweetID string, quantity int,
) (domain.Sweet, error) {
	const op = "SweetsRepository.AddStock"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE sweets
		SET stock = stock + $2
		WHERE sweet_id = $1
		RETURNING ` + sweetColumns + `;`

	v, err := scanSweet(r.sqldb.QueryRowContext(ctx, query, sweetID, quantity))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (r SweetsRepository) querySweets(
	ctx context.Context, query string, args ...any,
) ([]domain.Sweet, error) {
	rows, err := r.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vs []domain.Sweet
	for rows.Next() {
		v, err := scanSweet(rows)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSweet(row rowScanner) (domain.Sweet, error) {
	var (
		v        domain.Sweet
		category string
	)
	err := row.Scan(
		&v.ID, &v.Name, &v.Description, &v.Price, &category,
		&v.Image, &v.Stock, &v.PurchasedCount, &v.CreatedBy, &v.CreatedAt,
	)
	if err != nil {
		return domain.Sweet{}, err
	}
	v.Category = domain.Category(category)
	return v, nil
}
