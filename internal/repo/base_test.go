package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wishlist-backend/pkg/db/dbtest"
)

type ctxKey struct{}

func TestNewBaseStoresConnection(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)
	require.Same(t, conn, base.db)
}

func TestBaseDBBindsContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx)
	require.NotNil(t, withCtx.Statement)
	require.Equal(t, "value", withCtx.Statement.Context.Value(ctxKey{}))
}

func TestBaseDBWithoutContext(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)
	//nolint:staticcheck // nil context returns the raw handle
	require.Same(t, conn, base.DB(nil))
}

func TestBaseTx(t *testing.T) {
	conn := dbtest.Open(t)
	base := NewBase(conn)

	require.Same(t, conn, base.Tx(nil).db)

	tx := conn.Begin()
	t.Cleanup(func() { tx.Rollback() })
	require.Same(t, tx, base.Tx(tx).db)
	require.Same(t, conn, base.db, "original base is untouched")
}
