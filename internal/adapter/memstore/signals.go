package memstore

import (
	"sync"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.SignalsSaver = (*SignalStore)(nil)
var _ port.SignalsSource = (*SignalStore)(nil)

type userSignals struct {
	purchases []domain.SignalEvent
	views     []domain.SignalEvent
}

// SignalStore holds the bounded per-user recent-activity sequences fed
// by the signal consumer. Sequences are most-recent-first; entries past
// the retention bound are evicted.
type SignalStore struct {
	mu sync.RWMutex
	m  map[string]userSignals
}

func NewSignalStore() *SignalStore {
	return &SignalStore{m: make(map[string]userSignals)}
}

func (s *SignalStore) SaveSignal(evt domain.SignalEvent) {
	if evt.UserID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	us := s.m[evt.UserID]
	switch evt.Kind {
	case domain.SignalPurchase:
		us.purchases = domain.PushFront(us.purchases, evt, domain.PurchaseRetention)
	case domain.SignalView:
		us.views = domain.PushFront(us.views, evt, domain.ViewRetention)
	default:
		return
	}
	s.m[evt.UserID] = us
}

func (s *SignalStore) RecentPurchases(userID string) []domain.SignalEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	us := s.m[userID]
	out := make([]domain.SignalEvent, len(us.purchases))
	copy(out, us.purchases)
	return out
}

func (s *SignalStore) RecentViews(userID string) []domain.SignalEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	us := s.m[userID]
	out := make([]domain.SignalEvent, len(us.views))
	copy(out, us.views)
	return out
}
