package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.CartsRepository = (*CartsRepository)(nil)

type CartsRepository struct {
	sqldb sqldb
}

func NewCartsRepository(sqldb sqldb) CartsRepository {
	return CartsRepository{sqldb}
}

// ReplaceCart deletes and reinserts the account's lines in one
// transaction: the last sync observed by storage wins in full.
func (r CartsRepository) ReplaceCart(
	ctx context.Context, userID string, lines []domain.CartLine,
) (replaceErr error) {
	const op = "CartsRepository.ReplaceCart"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if replaceErr == nil {
			if err := tx.Commit(); err != nil {
				replaceErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}
		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO cart_lines (user_id, sweet_id, quantity, price, category)
		VALUES ($1, $2, $3, $4, $5);`

	for _, l := range lines {
		_, err = tx.ExecContext(ctx, query,
			userID, l.SweetID, l.Quantity, l.Price, string(l.Category))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (r CartsRepository) GetCart(
	ctx context.Context, userID string,
) (domain.Cart, error) {
	const op = "CartsRepository.GetCart"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT sweet_id, quantity, price, category
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY added_at ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	cart := domain.Cart{UserID: userID}
	for rows.Next() {
		var (
			l        domain.CartLine
			category string
		)
		err := rows.Scan(&l.SweetID, &l.Quantity, &l.Price, &category)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
		}
		l.Category = domain.Category(category)
		cart.Lines = append(cart.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}
