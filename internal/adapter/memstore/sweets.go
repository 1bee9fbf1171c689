// Package memstore provides in-memory repository implementations.
// The sweet repository honors the same conditional-update contract as
// the SQL one: the stock check and the counter updates happen under a
// single critical section.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.SweetsRepository = (*SweetsRepository)(nil)

type SweetsRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Sweet
}

func NewSweetsRepository() *SweetsRepository {
	return &SweetsRepository{m: make(map[string]domain.Sweet)}
}

func (r *SweetsRepository) CreateSweet(
	ctx context.Context, v domain.Sweet,
) error {
	const op = "memstore.SweetsRepository.CreateSweet"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[v.ID] = v
	return nil
}

func (r *SweetsRepository) GetSweet(
	ctx context.Context, sweetID string,
) (domain.Sweet, error) {
	const op = "memstore.SweetsRepository.GetSweet"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[sweetID]
	if !ok {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return v, nil
}

func (r *SweetsRepository) GetSweets(
	ctx context.Context, sweetIDs []string,
) ([]domain.Sweet, error) {
	const op = "memstore.SweetsRepository.GetSweets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var vs []domain.Sweet
	for _, id := range sweetIDs {
		if v, ok := r.m[id]; ok {
			vs = append(vs, v)
		}
	}
	return vs, nil
}

func (r *SweetsRepository) ListSweets(
	ctx context.Context,
) ([]domain.Sweet, error) {
	const op = "memstore.SweetsRepository.ListSweets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	vs := make([]domain.Sweet, 0, len(r.m))
	for _, v := range r.m {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool {
		if !vs[i].CreatedAt.Equal(vs[j].CreatedAt) {
			return vs[i].CreatedAt.After(vs[j].CreatedAt)
		}
		return vs[i].ID < vs[j].ID
	})
	return vs, nil
}

func (r *SweetsRepository) SearchSweets(
	ctx context.Context, f domain.SearchFilter,
) ([]domain.Sweet, error) {
	const op = "memstore.SweetsRepository.SearchSweets"

	vs, err := r.ListSweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []domain.Sweet
	for _, v := range vs {
		if f.Query != "" &&
			!strings.Contains(strings.ToLower(v.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if f.HasMin && v.Price < f.MinPrice {
			continue
		}
		if f.HasMax && v.Price > f.MaxPrice {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SweetsRepository) UpdateSweet(
	ctx context.Context, sweetID string, upd domain.SweetUpdate,
) (domain.Sweet, error) {
	const op = "memstore.SweetsRepository.UpdateSweet"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.m[sweetID]
	if !ok {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	v.Name = upd.Name
	v.Description = upd.Description
	v.Price = upd.Price
	v.Category = upd.Category
	v.Image = upd.Image
	r.m[sweetID] = v
	return v, nil
}

func (r *SweetsRepository) DeleteSweet(
	ctx context.Context, sweetID string,
) error {
	const op = "memstore.SweetsRepository.DeleteSweet"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.m[sweetID]; !ok {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	delete(r.m, sweetID)
	return nil
}

func (r *SweetsRepository) PopularSweets(
	ctx context.Context, limit int,
) ([]domain.Sweet, error) {
	const op = "memstore.SweetsRepository.PopularSweets"

	vs, err := r.ListSweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.Slice(vs, func(i, j int) bool {
		if vs[i].PurchasedCount != vs[j].PurchasedCount {
			return vs[i].PurchasedCount > vs[j].PurchasedCount
		}
		if !vs[i].CreatedAt.Equal(vs[j].CreatedAt) {
			return vs[i].CreatedAt.After(vs[j].CreatedAt)
		}
		return vs[i].ID < vs[j].ID
	})
	if limit > 0 && len(vs) > limit {
		vs = vs[:limit]
	}
	return vs, nil
}

// ReserveStock checks and updates under one lock, mirroring the SQL
// repository's single conditional statement.
func (r *SweetsRepository) ReserveStock(
	ctx context.Context, sweetID string, quantity int,
) (domain.Sweet, error) {
	const op = "memstore.SweetsRepository.ReserveStock"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.m[sweetID]
	if !ok {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if v.Stock < quantity {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op,
			domain.InsufficientStockError{SweetID: sweetID, Available: v.Stock})
	}
	v.Stock -= quantity
	v.PurchasedCount += quantity
	r.m[sweetID] = v
	return v, nil
}

func (r *SweetsRepository) AddStock(
	ctx context.Context, sweetID string, quantity int,
) (domain.Sweet, error) {
	const op = "memstore.SweetsRepository.AddStock"

	if err := ctx.Err(); err != nil {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.m[sweetID]
	if !ok {
		return domain.Sweet{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	v.Stock += quantity
	r.m[sweetID] = v
	return v, nil
}
