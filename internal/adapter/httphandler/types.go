package httphandler

import (
	"time"

	"github.com/niksmo/sweet-shop/internal/core/domain"
)

type (
	Sweet struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Description    string    `json:"description,omitempty"`
		Price          float64   `json:"price"`
		Category       string    `json:"category"`
		Image          string    `json:"image,omitempty"`
		Stock          *int      `json:"stock,omitempty"`
		PurchasedCount int       `json:"purchased_count"`
		CreatedBy      string    `json:"created_by,omitempty"`
		CreatedAt      time.Time `json:"created_at"`
	}

	SweetPayload struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Category    string  `json:"category"`
		Image       string  `json:"image"`
		Stock       int     `json:"stock"`
	}

	QuantityPayload struct {
		Quantity int `json:"quantity"`
	}

	PurchaseResponse struct {
		Sweet             Sweet `json:"sweet"`
		PurchasedQuantity int   `json:"purchased_quantity"`
	}

	SweetResponse struct {
		Sweet Sweet `json:"sweet"`
	}

	SweetsResponse struct {
		Sweets []Sweet `json:"sweets"`
	}

	CartItem struct {
		Item     string `json:"item"`
		Quantity int    `json:"quantity"`
	}

	CartSyncPayload struct {
		Items []CartItem `json:"items"`
	}

	CartLine struct {
		Item     string  `json:"item"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Image    string  `json:"image,omitempty"`
		Category string  `json:"category"`
		Quantity int     `json:"quantity"`
	}

	Cart struct {
		Items    []CartLine `json:"items"`
		Subtotal float64    `json:"subtotal"`
	}

	CartResponse struct {
		Cart Cart `json:"cart"`
	}
)

// toSweet redacts the stock counter for non-admin callers.
func toSweet(v domain.Sweet, admin bool) Sweet {
	s := Sweet{
		ID:             v.ID,
		Name:           v.Name,
		Description:    v.Description,
		Price:          v.Price,
		Category:       string(v.Category),
		Image:          v.Image,
		PurchasedCount: v.PurchasedCount,
		CreatedBy:      v.CreatedBy,
		CreatedAt:      v.CreatedAt,
	}
	if admin {
		stock := v.Stock
		s.Stock = &stock
	}
	return s
}

func toSweets(vs []domain.Sweet, admin bool) []Sweet {
	out := make([]Sweet, len(vs))
	for i, v := range vs {
		out[i] = toSweet(v, admin)
	}
	return out
}

func toCart(v domain.ResolvedCart) Cart {
	c := Cart{Items: make([]CartLine, len(v.Items))}
	for i, l := range v.Items {
		c.Items[i] = CartLine{
			Item:     l.SweetID,
			Name:     l.Name,
			Price:    l.Price,
			Image:    l.Image,
			Category: string(l.Category),
			Quantity: l.Quantity,
		}
	}
	c.Subtotal = v.Subtotal()
	return c
}
