package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.CartArchive = (*FileCartArchive)(nil)

type (
	archivedLine struct {
		SweetID  string  `json:"sweet_id"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	}

	archivedCart struct {
		UserID string         `json:"user_id"`
		Lines  []archivedLine `json:"lines"`
	}
)

// FileCartArchive persists a client-held cart as a JSON document.
// A missing file loads as an empty cart.
type FileCartArchive struct {
	path string
}

func NewFileCartArchive(path string) FileCartArchive {
	return FileCartArchive{path}
}

func (a FileCartArchive) Load() (domain.Cart, error) {
	const op = "FileCartArchive.Load"

	b, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Cart{}, nil
		}
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	var stored archivedCart
	if err := json.Unmarshal(b, &stored); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart := domain.Cart{UserID: stored.UserID}
	for _, l := range stored.Lines {
		cart.Lines = append(cart.Lines, domain.CartLine{
			SweetID:  l.SweetID,
			Quantity: l.Quantity,
			Price:    l.Price,
			Category: domain.Category(l.Category),
		})
	}
	return cart, nil
}

func (a FileCartArchive) Save(cart domain.Cart) error {
	const op = "FileCartArchive.Save"

	stored := archivedCart{UserID: cart.UserID}
	for _, l := range cart.Lines {
		stored.Lines = append(stored.Lines, archivedLine{
			SweetID:  l.SweetID,
			Quantity: l.Quantity,
			Price:    l.Price,
			Category: string(l.Category),
		})
	}

	b, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(a.path, b, 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
