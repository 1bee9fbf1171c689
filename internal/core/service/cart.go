package service

import (
	"context"
	"fmt"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/pkg/hexid"
)

var _ port.CartSyncer = (*CartService)(nil)
var _ port.CartFetcher = (*CartService)(nil)

// CartService reconciles a client-held cart into the server-of-record
// cart and serves live-joined cart views.
type CartService struct {
	carts  port.CartsRepository
	sweets port.SweetsRepository
}

func NewCartService(
	carts port.CartsRepository, sweets port.SweetsRepository,
) CartService {
	return CartService{carts, sweets}
}

// Sync replaces the account's server cart with the client-held lines.
// Last sync wins in full: quantities are never merged across the two
// carts. Duplicate sweet ids within one payload sum their quantities.
func (s CartService) Sync(
	ctx context.Context, userID string, lines []domain.CartLine,
) (domain.ResolvedCart, error) {
	const op = "CartService.Sync"

	if err := ctx.Err(); err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	normalized, err := s.normalizeLines(lines)
	if err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	normalized, err = s.stampSnapshots(ctx, normalized)
	if err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.carts.ReplaceCart(ctx, userID, normalized); err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.fetch(ctx, userID)
	if err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

// Fetch joins the stored lines against the current catalog: name,
// price, image and category are as of the time of the call.
func (s CartService) Fetch(
	ctx context.Context, userID string,
) (domain.ResolvedCart, error) {
	const op = "CartService.Fetch"

	if err := ctx.Err(); err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.fetch(ctx, userID)
	if err != nil {
		return domain.ResolvedCart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s CartService) normalizeLines(
	lines []domain.CartLine,
) ([]domain.CartLine, error) {
	var cart domain.Cart
	for _, l := range lines {
		if !hexid.Valid(l.SweetID) {
			return nil, domain.CartValidationError{
				SweetID: l.SweetID, Reason: domain.ErrInvalidSweetID,
			}
		}
		if l.Quantity < 1 {
			return nil, domain.CartValidationError{
				SweetID: l.SweetID, Reason: domain.ErrInvalidQuantity,
			}
		}
		cart.AddItem(l)
	}
	return cart.Lines, nil
}

// stampSnapshots verifies every line against the catalog and captures
// the price and category snapshots as of the sync.
func (s CartService) stampSnapshots(
	ctx context.Context, lines []domain.CartLine,
) ([]domain.CartLine, error) {
	if len(lines) == 0 {
		return lines, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.SweetID)
	}

	sweets, err := s.sweets.GetSweets(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Sweet, len(sweets))
	for _, sw := range sweets {
		byID[sw.ID] = sw
	}
	for i, l := range lines {
		sw, ok := byID[l.SweetID]
		if !ok {
			return nil, domain.CartValidationError{
				SweetID: l.SweetID, Reason: domain.ErrNotFound,
			}
		}
		lines[i].Price = sw.Price
		lines[i].Category = sw.Category
	}
	return lines, nil
}

func (s CartService) fetch(
	ctx context.Context, userID string,
) (domain.ResolvedCart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.ResolvedCart{}, err
	}

	resolved := domain.ResolvedCart{UserID: userID}
	if len(cart.Lines) == 0 {
		return resolved, nil
	}

	ids := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.SweetID)
	}

	sweets, err := s.sweets.GetSweets(ctx, ids)
	if err != nil {
		return domain.ResolvedCart{}, err
	}

	byID := make(map[string]domain.Sweet, len(sweets))
	for _, sw := range sweets {
		byID[sw.ID] = sw
	}

	for _, l := range cart.Lines {
		sw, ok := byID[l.SweetID]
		if !ok {
			// sweet deleted since sync; drop the line from the view
			continue
		}
		resolved.Items = append(resolved.Items, domain.ResolvedCartLine{
			SweetID:  sw.ID,
			Name:     sw.Name,
			Price:    sw.Price,
			Image:    sw.Image,
			Category: sw.Category,
			Quantity: l.Quantity,
		})
	}
	return resolved, nil
}
