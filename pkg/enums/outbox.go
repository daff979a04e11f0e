package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateWishlist OutboxAggregateType = "wishlist"
	AggregateCart     OutboxAggregateType = "cart"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateWishlist,
	AggregateCart,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names the domain event carried by an outbox row.
type OutboxEventType string

const (
	EventWishlistItemAdded       OutboxEventType = "wishlist_item_added"
	EventWishlistItemRemoved     OutboxEventType = "wishlist_item_removed"
	EventWishlistItemMovedToCart OutboxEventType = "wishlist_item_moved_to_cart"
	EventWishlistCreated         OutboxEventType = "wishlist_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventWishlistItemAdded,
	EventWishlistItemRemoved,
	EventWishlistItemMovedToCart,
	EventWishlistCreated,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
