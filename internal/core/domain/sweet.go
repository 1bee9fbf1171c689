package domain

import "time"

type Category string

const (
	CategoryChocolate Category = "Chocolate"
	CategoryCandy     Category = "Candy"
	CategoryPastry    Category = "Pastry"
	CategoryOther     Category = "Other"
)

// NormalizeCategory maps unknown category names to [CategoryOther].
func NormalizeCategory(s string) Category {
	switch Category(s) {
	case CategoryChocolate, CategoryCandy, CategoryPastry:
		return Category(s)
	default:
		return CategoryOther
	}
}

type Sweet struct {
	ID             string
	Name           string
	Description    string
	Price          float64
	Category       Category
	Image          string
	Stock          int
	PurchasedCount int
	CreatedBy      string
	CreatedAt      time.Time
}

// SearchFilter narrows catalog listings.
// Zero values mean "no constraint" for the corresponding field.
type SearchFilter struct {
	Query    string
	Category Category
	MinPrice float64
	MaxPrice float64
	HasMin   bool
	HasMax   bool
}

type SweetUpdate struct {
	Name        string
	Description string
	Price       float64
	Category    Category
	Image       string
}
