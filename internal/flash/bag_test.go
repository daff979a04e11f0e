package flash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
)

type memoryList struct {
	lists map[string][]string
	ttls  map[string]time.Duration
	err   error
}

func newMemoryList() *memoryList {
	return &memoryList{lists: map[string][]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryList) AppendWithTTL(_ context.Context, key string, ttl time.Duration, values ...string) error {
	if m.err != nil {
		return m.err
	}
	m.lists[key] = append(m.lists[key], values...)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryList) Drain(_ context.Context, key string, max int) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	values := m.lists[key]
	if len(values) > max {
		m.lists[key] = values[max:]
		return values[:max], nil
	}
	delete(m.lists, key)
	return values, nil
}

func (m *memoryList) FlashKey(userID string) string {
	return "wl:flash:" + userID
}

func TestBagAddAndConsume(t *testing.T) {
	store := newMemoryList()
	bag, err := NewBag(store, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, bag.Add(ctx, userID, enums.FlashSuccess, "Item added"))
	require.NoError(t, bag.Add(ctx, userID, enums.FlashInfo, "Already there"))
	require.Equal(t, time.Minute, store.ttls["wl:flash:"+userID.String()])

	flashes, err := bag.Consume(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []types.Flash{
		{Type: "success", Message: "Item added"},
		{Type: "info", Message: "Already there"},
	}, flashes)

	flashes, err = bag.Consume(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, flashes, "flashes are one-shot")
}

func TestBagIgnoresAnonymousAndEmpty(t *testing.T) {
	store := newMemoryList()
	bag, err := NewBag(store, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, bag.Add(ctx, uuid.Nil, enums.FlashSuccess, "ignored"))
	require.NoError(t, bag.Add(ctx, uuid.New(), enums.FlashSuccess, "   "))
	require.Empty(t, store.lists)

	require.Error(t, bag.Add(ctx, uuid.New(), enums.FlashType("warning"), "nope"))
}

func TestBagSkipsCorruptEntries(t *testing.T) {
	store := newMemoryList()
	bag, err := NewBag(store, time.Minute)
	require.NoError(t, err)
	userID := uuid.New()
	store.lists[store.FlashKey(userID.String())] = []string{"not-json", `{"type":"error","message":"Oops"}`}

	flashes, err := bag.Consume(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, []types.Flash{{Type: "error", Message: "Oops"}}, flashes)
}

func TestBagPropagatesStoreErrors(t *testing.T) {
	store := newMemoryList()
	store.err = errors.New("redis down")
	bag, err := NewBag(store, time.Minute)
	require.NoError(t, err)

	require.Error(t, bag.Add(context.Background(), uuid.New(), enums.FlashSuccess, "x"))
	_, err = bag.Consume(context.Background(), uuid.New())
	require.Error(t, err)

	_, err = NewBag(nil, time.Minute)
	require.Error(t, err)
}

func TestBagConsumeSkipsUnknownTypes(t *testing.T) {
	store := newMemoryList()
	bag, err := NewBag(store, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()
	key := store.FlashKey(userID.String())

	require.NoError(t, store.AppendWithTTL(ctx, key, time.Minute,
		`{"type":"warning","message":"unsupported"}`,
		`not json`,
		`{"type":" Error ","message":"Out of stock"}`,
	))

	flashes, err := bag.Consume(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []types.Flash{{Type: "error", Message: "Out of stock"}}, flashes)
}
