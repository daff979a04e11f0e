package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wishlist-backend/internal/users"
	"github.com/angelmondragon/wishlist-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/security"
)

func TestRegisterCreatesShopper(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)

	ctx := context.Background()
	created, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     " Ada@Example.com",
		Password:  "analytical-engine",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.True(t, created.IsActive)

	stored, err := users.NewRepository(conn).FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("analytical-engine", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	client, _ := dbtest.OpenClient(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)
	ctx := context.Background()

	req := RegisterRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "analytical-engine"}
	_, err = svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	req.Email = "other@example.com"
	req.Password = "short"
	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewRegisterService(RegisterServiceParams{})
	assert.Error(t, err)
}
