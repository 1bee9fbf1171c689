package domain

const (
	// Retention bounds for recent-activity sequences, most-recent-first.
	ViewRetention     = 100
	PurchaseRetention = 200
)

type SignalKind string

const (
	SignalView     SignalKind = "view"
	SignalPurchase SignalKind = "purchase"
)

// A SignalEvent is one recent-activity entry: a view or a purchase.
type SignalEvent struct {
	Kind     SignalKind
	UserID   string
	SweetID  string
	Category Category
	Price    float64
	Quantity int
	UnixMs   int64
}

// A SignalBundle is the caller-supplied scoring input: bounded
// most-recent-first purchase and view sequences plus the categories
// currently in the cart. It is ephemeral and never persisted with
// the catalog.
type SignalBundle struct {
	Purchases      []SignalEvent
	Views          []SignalEvent
	CartCategories []Category
}

// PushFront prepends an event onto a bounded sequence, evicting the
// oldest entry past the bound.
func PushFront(seq []SignalEvent, evt SignalEvent, bound int) []SignalEvent {
	seq = append([]SignalEvent{evt}, seq...)
	if len(seq) > bound {
		seq = seq[:bound]
	}
	return seq
}
