package service

import (
	"context"
	"fmt"
	"time"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
	"github.com/niksmo/sweet-shop/pkg/hexid"
)

// PopularityCap bounds the popularity listing.
const PopularityCap = 12

var _ port.CatalogReader = (*CatalogService)(nil)
var _ port.CatalogWriter = (*CatalogService)(nil)

// CatalogService is pass-through catalog CRUD. Stock mutation stays
// with [StockService]; edits here never touch the counters.
type CatalogService struct {
	sweets port.SweetsRepository
}

func NewCatalogService(sweets port.SweetsRepository) CatalogService {
	return CatalogService{sweets}
}

func (s CatalogService) List(ctx context.Context) ([]domain.Sweet, error) {
	const op = "CatalogService.List"

	sweets, err := s.sweets.ListSweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sweets, nil
}

func (s CatalogService) Search(
	ctx context.Context, f domain.SearchFilter,
) ([]domain.Sweet, error) {
	const op = "CatalogService.Search"

	sweets, err := s.sweets.SearchSweets(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sweets, nil
}

func (s CatalogService) Get(
	ctx context.Context, sweetID string,
) (domain.Sweet, error) {
	const op = "CatalogService.Get"

	if !hexid.Valid(sweetID) {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidSweetID)
	}

	sweet, err := s.sweets.GetSweet(ctx, sweetID)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return sweet, nil
}

// Popular returns at most [PopularityCap] sweets ordered by purchased
// count descending, then creation time descending.
func (s CatalogService) Popular(ctx context.Context) ([]domain.Sweet, error) {
	const op = "CatalogService.Popular"

	sweets, err := s.sweets.PopularSweets(ctx, PopularityCap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sweets, nil
}

func (s CatalogService) Create(
	ctx context.Context, p domain.Principal, sweet domain.Sweet,
) (domain.Sweet, error) {
	const op = "CatalogService.Create"

	if p.UserID == "" {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}
	if sweet.Name == "" || sweet.Price < 0 {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidSweet)
	}

	sweet.ID = hexid.New()
	sweet.Category = domain.NormalizeCategory(string(sweet.Category))
	sweet.PurchasedCount = 0
	sweet.CreatedBy = p.UserID
	sweet.CreatedAt = time.Now().UTC()
	if sweet.Stock < 0 {
		sweet.Stock = 0
	}

	if err := s.sweets.CreateSweet(ctx, sweet); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return sweet, nil
}

// Update applies name/price/category/image edits. Only the creator or
// an admin may edit.
func (s CatalogService) Update(
	ctx context.Context, p domain.Principal, sweetID string, upd domain.SweetUpdate,
) (domain.Sweet, error) {
	const op = "CatalogService.Update"

	sweet, err := s.Get(ctx, sweetID)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	if sweet.CreatedBy != p.UserID && !p.Admin {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrForbidden)
	}
	if upd.Price < 0 {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidSweet)
	}

	upd.Category = domain.NormalizeCategory(string(upd.Category))
	updated, err := s.sweets.UpdateSweet(ctx, sweetID, upd)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (s CatalogService) Delete(
	ctx context.Context, p domain.Principal, sweetID string,
) error {
	const op = "CatalogService.Delete"

	if !p.Admin {
		return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
	}
	if !hexid.Valid(sweetID) {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidSweetID)
	}

	if err := s.sweets.DeleteSweet(ctx, sweetID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
