package port

import (
	"context"
	"sync"

	"github.com/niksmo/sweet-shop/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Outbound: storage.

type SweetsRepository interface {
	CreateSweet(context.Context, domain.Sweet) error
	GetSweet(ctx context.Context, sweetID string) (domain.Sweet, error)
	GetSweets(ctx context.Context, sweetIDs []string) ([]domain.Sweet, error)
	ListSweets(context.Context) ([]domain.Sweet, error)
	SearchSweets(context.Context, domain.SearchFilter) ([]domain.Sweet, error)
	UpdateSweet(ctx context.Context, sweetID string, upd domain.SweetUpdate) (domain.Sweet, error)
	DeleteSweet(ctx context.Context, sweetID string) error
	PopularSweets(ctx context.Context, limit int) ([]domain.Sweet, error)

	// ReserveStock decrements stock and increments purchased_count by
	// quantity in one conditional storage operation. It fails with
	// [domain.InsufficientStockError] when stock < quantity at the
	// moment of update.
	ReserveStock(ctx context.Context, sweetID string, quantity int) (domain.Sweet, error)
	AddStock(ctx context.Context, sweetID string, quantity int) (domain.Sweet, error)
}

type CartsRepository interface {
	ReplaceCart(ctx context.Context, userID string, lines []domain.CartLine) error
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
}

// CartArchive persists a client-held cart between sessions.
type CartArchive interface {
	Load() (domain.Cart, error)
	Save(domain.Cart) error
}

// Outbound: signal pipeline.

type SignalsProducer interface {
	ProduceSignal(context.Context, domain.SignalEvent) error
}

// SignalsSaver accepts consumed signal events into the per-user store.
type SignalsSaver interface {
	SaveSignal(domain.SignalEvent)
}

// SignalsSource serves the bounded recent-activity sequences,
// most-recent-first.
type SignalsSource interface {
	RecentPurchases(userID string) []domain.SignalEvent
	RecentViews(userID string) []domain.SignalEvent
}

// PopularityIndex serves the per-sweet cumulative purchase count
// accumulated from the purchase signal stream.
type PopularityIndex interface {
	PurchaseCount(sweetID string) (int, bool)
}

type SignalsConsumer interface {
	runnerContextWg
	closer
}

type PopularityProcessor interface {
	runnerContextWg
	closer
}

// Outbound: external auth collaborator.

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// Inbound: core operations exposed to transport adapters.

type StockPurchaser interface {
	Purchase(ctx context.Context, sweetID string, quantity int) (domain.Sweet, error)
}

type Restocker interface {
	Restock(ctx context.Context, sweetID string, quantity int) (domain.Sweet, error)
}

type CartSyncer interface {
	Sync(ctx context.Context, userID string, lines []domain.CartLine) (domain.ResolvedCart, error)
}

type CartFetcher interface {
	Fetch(ctx context.Context, userID string) (domain.ResolvedCart, error)
}

type ViewRecorder interface {
	RecordView(ctx context.Context, userID, sweetID string) error
}

type Recommender interface {
	Recommend(ctx context.Context, userID string, limit int) ([]domain.Sweet, error)
}

type CatalogReader interface {
	List(context.Context) ([]domain.Sweet, error)
	Search(context.Context, domain.SearchFilter) ([]domain.Sweet, error)
	Get(ctx context.Context, sweetID string) (domain.Sweet, error)
	Popular(context.Context) ([]domain.Sweet, error)
}

type CatalogWriter interface {
	Create(ctx context.Context, p domain.Principal, s domain.Sweet) (domain.Sweet, error)
	Update(ctx context.Context, p domain.Principal, sweetID string, upd domain.SweetUpdate) (domain.Sweet, error)
	Delete(ctx context.Context, p domain.Principal, sweetID string) error
}
