// Package flash keeps one-shot storefront messages per user in Redis.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	redisclient "github.com/angelmondragon/wishlist-backend/pkg/redis"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
)

const (
	defaultTTL  = 10 * time.Minute
	maxConsumed = 50
)

// Bag appends and drains flash messages.
type Bag struct {
	store redisclient.ListStore
	ttl   time.Duration
}

func NewBag(store redisclient.ListStore, ttl time.Duration) (*Bag, error) {
	if store == nil {
		return nil, fmt.Errorf("flash store required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Bag{store: store, ttl: ttl}, nil
}

// Add queues a message for the user's next page view. Anonymous users have no
// bag and the call is a no-op.
func (b *Bag) Add(ctx context.Context, userID uuid.UUID, kind enums.FlashType, message string) error {
	if userID == uuid.Nil {
		return nil
	}
	if !kind.IsValid() {
		return fmt.Errorf("invalid flash type %q", kind)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	raw, err := json.Marshal(types.Flash{Type: kind.String(), Message: message})
	if err != nil {
		return err
	}
	return b.store.AppendWithTTL(ctx, b.store.FlashKey(userID.String()), b.ttl, string(raw))
}

// Consume returns and clears every queued message in insertion order.
// Entries that fail to decode or carry an unknown type are skipped.
func (b *Bag) Consume(ctx context.Context, userID uuid.UUID) ([]types.Flash, error) {
	if userID == uuid.Nil {
		return []types.Flash{}, nil
	}
	values, err := b.store.Drain(ctx, b.store.FlashKey(userID.String()), maxConsumed)
	if err != nil {
		return nil, err
	}
	out := make([]types.Flash, 0, len(values))
	for _, value := range values {
		var flash types.Flash
		if err := json.Unmarshal([]byte(value), &flash); err != nil {
			continue
		}
		kind, err := enums.ParseFlashType(strings.ToLower(strings.TrimSpace(flash.Type)))
		if err != nil {
			continue
		}
		flash.Type = kind.String()
		out = append(out, flash)
	}
	return out, nil
}
