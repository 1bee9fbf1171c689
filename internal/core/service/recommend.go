package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

// Scoring constants carried over from the original ranking function.
const (
	purchaseEventsCap = 30
	viewEventsCap     = 50

	purchaseBaseWeight   = 6.0
	purchaseDecayCap     = 5
	viewBaseWeight       = 2.0
	viewDecayCap         = 1
	cartCategoryWeight   = 3.0
	viewFamiliarityBoost = 3.0

	tightPriceBand    = 0.2
	widePriceBand     = 0.5
	tightPriceBonus   = 2.0
	widePriceBonus    = 1.0
	popularityDivisor = 100.0
	freshnessNudge    = 0.1
)

// Rank scores catalog sweets against the signal bundle and returns the
// top sweets in descending score order. It is a pure function: no I/O,
// no hidden state, identical inputs produce identical output order.
func Rank(
	catalog []domain.Sweet,
	bundle domain.SignalBundle,
	exclude map[string]struct{},
	limit int,
) []domain.Sweet {
	catWeight := categoryWeights(bundle)
	avgPrice, hasAvg := purchaseWeightedAvgPrice(bundle.Purchases)
	viewed := viewedSweetIDs(bundle.Views)

	type scored struct {
		sweet domain.Sweet
		score float64
	}

	ranked := make([]scored, 0, len(catalog))
	for _, sw := range catalog {
		if _, skip := exclude[sw.ID]; skip {
			continue
		}

		score := catWeight[sw.Category]

		if _, ok := viewed[sw.ID]; ok {
			score += viewFamiliarityBoost
		}

		if hasAvg {
			score += priceProximityBonus(sw.Price, avgPrice)
		}

		score += float64(sw.PurchasedCount) / popularityDivisor

		if !sw.CreatedAt.IsZero() {
			score += freshnessNudge
		}

		ranked = append(ranked, scored{sw, score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].sweet.ID < ranked[j].sweet.ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]domain.Sweet, len(ranked))
	for i, r := range ranked {
		out[i] = r.sweet
	}
	return out
}

// categoryWeights builds the per-category weight map: recent purchases
// weigh most with positional decay, recent views weigh less, categories
// currently in the cart add a flat mid-size weight.
func categoryWeights(bundle domain.SignalBundle) map[domain.Category]float64 {
	w := make(map[domain.Category]float64)

	purchases := bundle.Purchases
	if len(purchases) > purchaseEventsCap {
		purchases = purchases[:purchaseEventsCap]
	}
	for i, evt := range purchases {
		w[evt.Category] += purchaseBaseWeight - float64(min(i, purchaseDecayCap))
	}

	views := bundle.Views
	if len(views) > viewEventsCap {
		views = views[:viewEventsCap]
	}
	for i, evt := range views {
		w[evt.Category] += viewBaseWeight - float64(min(i, viewDecayCap))
	}

	for _, c := range bundle.CartCategories {
		w[c] += cartCategoryWeight
	}
	return w
}

func purchaseWeightedAvgPrice(purchases []domain.SignalEvent) (float64, bool) {
	var sum, qty float64
	for _, evt := range purchases {
		q := float64(evt.Quantity)
		if q < 1 {
			q = 1
		}
		sum += evt.Price * q
		qty += q
	}
	if qty == 0 {
		return 0, false
	}
	return sum / qty, true
}

func priceProximityBonus(price, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	delta := math.Abs(price-avg) / avg
	switch {
	case delta <= tightPriceBand:
		return tightPriceBonus
	case delta <= widePriceBand:
		return widePriceBonus
	default:
		return 0
	}
}

func viewedSweetIDs(views []domain.SignalEvent) map[string]struct{} {
	ids := make(map[string]struct{}, len(views))
	for _, evt := range views {
		ids[evt.SweetID] = struct{}{}
	}
	return ids
}

var _ port.Recommender = (*RecommendService)(nil)
var _ port.ViewRecorder = (*RecommendService)(nil)

// RecommendService assembles the signal bundle for a caller and ranks
// the catalog against it.
type RecommendService struct {
	sweets     port.SweetsRepository
	carts      port.CartsRepository
	signals    port.SignalsSource
	popularity port.PopularityIndex
	producer   port.SignalsProducer
}

func NewRecommendService(
	sweets port.SweetsRepository,
	carts port.CartsRepository,
	signals port.SignalsSource,
	popularity port.PopularityIndex,
	producer port.SignalsProducer,
) RecommendService {
	return RecommendService{sweets, carts, signals, popularity, producer}
}

func (s RecommendService) Recommend(
	ctx context.Context, userID string, limit int,
) ([]domain.Sweet, error) {
	const op = "RecommendService.Recommend"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	catalog, err := s.sweets.ListSweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bundle := domain.SignalBundle{
		Purchases:      s.signals.RecentPurchases(userID),
		Views:          s.signals.RecentViews(userID),
		CartCategories: cart.Categories(),
	}

	exclude := make(map[string]struct{}, len(cart.Lines))
	for _, l := range cart.Lines {
		exclude[l.SweetID] = struct{}{}
	}

	catalog = s.overlayPopularity(catalog)
	return Rank(catalog, bundle, exclude, limit), nil
}

// overlayPopularity prefers the streamed purchase count over the
// catalog snapshot when the popularity index has an entry.
func (s RecommendService) overlayPopularity(
	catalog []domain.Sweet,
) []domain.Sweet {
	if s.popularity == nil {
		return catalog
	}
	for i := range catalog {
		if n, ok := s.popularity.PurchaseCount(catalog[i].ID); ok {
			catalog[i].PurchasedCount = n
		}
	}
	return catalog
}

func (s RecommendService) RecordView(
	ctx context.Context, userID, sweetID string,
) error {
	const op = "RecommendService.RecordView"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sweet, err := s.sweets.GetSweet(ctx, sweetID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	evt := domain.SignalEvent{
		Kind:     domain.SignalView,
		UserID:   userID,
		SweetID:  sweet.ID,
		Category: sweet.Category,
		Price:    sweet.Price,
		Quantity: 1,
		UnixMs:   nowUnixMs(),
	}
	if err := s.producer.ProduceSignal(ctx, evt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
