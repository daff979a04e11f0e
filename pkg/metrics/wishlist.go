package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	AddResultAdded     = "added"
	AddResultDuplicate = "duplicate"
)

// WishlistMetrics counts wishlist mutations.
type WishlistMetrics struct {
	added   *prometheus.CounterVec
	removed prometheus.Counter
	moved   *prometheus.CounterVec
}

// NewWishlistMetrics registers the wishlist counters on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewWishlistMetrics(reg prometheus.Registerer) *WishlistMetrics {
	if reg == nil {
		return &WishlistMetrics{}
	}
	added := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_items_added_total",
		Help: "Add-to-wishlist attempts by outcome.",
	}, []string{"result"})
	removed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_items_removed_total",
		Help: "Wishlist items removed.",
	})
	moved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_items_moved_to_cart_total",
		Help: "Wishlist items added to the cart.",
	}, []string{"price_locked"})
	reg.MustRegister(added, removed, moved)
	return &WishlistMetrics{added: added, removed: removed, moved: moved}
}

func (m *WishlistMetrics) IncAdded(result string) {
	if m == nil || m.added == nil {
		return
	}
	m.added.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *WishlistMetrics) IncRemoved() {
	if m == nil || m.removed == nil {
		return
	}
	m.removed.Inc()
}

func (m *WishlistMetrics) IncMovedToCart(priceLocked bool) {
	if m == nil || m.moved == nil {
		return
	}
	m.moved.WithLabelValues(strconv.FormatBool(priceLocked)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
