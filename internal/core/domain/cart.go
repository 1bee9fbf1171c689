package domain

// A CartLine couples a sweet reference with a quantity.
// Quantity is always >= 1 for a persisted line; Price and Category
// are snapshots captured when the line was added.
type CartLine struct {
	SweetID  string
	Quantity int
	Price    float64
	Category Category
}

// A Cart is a set of lines keyed by sweet id: at most one line per sweet.
type Cart struct {
	UserID string
	Lines  []CartLine
}

// AddItem increases the quantity of an existing line or appends a new one.
// The resulting quantity is clamped to at least 1.
func (c *Cart) AddItem(line CartLine) {
	for i := range c.Lines {
		if c.Lines[i].SweetID == line.SweetID {
			c.Lines[i].Quantity = clampQuantity(c.Lines[i].Quantity + line.Quantity)
			return
		}
	}
	line.Quantity = clampQuantity(line.Quantity)
	c.Lines = append(c.Lines, line)
}

func (c *Cart) RemoveItem(sweetID string) {
	for i := range c.Lines {
		if c.Lines[i].SweetID == sweetID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line.
func (c *Cart) SetQuantity(sweetID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(sweetID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].SweetID == sweetID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Subtotal sums price snapshots; a later price change in the catalog
// does not move a pending cart's subtotal.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

func (c *Cart) TotalItems() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Categories returns the distinct categories present in the cart,
// in line order.
func (c *Cart) Categories() []Category {
	seen := make(map[Category]struct{}, len(c.Lines))
	var cs []Category
	for _, l := range c.Lines {
		if _, ok := seen[l.Category]; ok {
			continue
		}
		seen[l.Category] = struct{}{}
		cs = append(cs, l.Category)
	}
	return cs
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// A ResolvedCartLine is a display-ready line joined against the live catalog.
type ResolvedCartLine struct {
	SweetID  string
	Name     string
	Price    float64
	Image    string
	Category Category
	Quantity int
}

type ResolvedCart struct {
	UserID string
	Items  []ResolvedCartLine
}

func (c ResolvedCart) Subtotal() float64 {
	var total float64
	for _, l := range c.Items {
		total += l.Price * float64(l.Quantity)
	}
	return total
}
