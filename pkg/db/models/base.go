package models

import "github.com/google/uuid"

// assignID fills a zero primary key so inserts do not depend on database-side defaults.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every persisted model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&ProductVariant{},
		&ChannelPricing{},
		&Wishlist{},
		&WishlistItem{},
		&CartRecord{},
		&CartItem{},
		&OutboxEvent{},
	}
}
