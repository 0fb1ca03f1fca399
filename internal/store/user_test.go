package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetshop/apiserver/types"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, types.User{
		Email:        "admin@sweetshop.com",
		Role:         types.RoleAdmin,
		PasswordHash: "$2a$10$fakehash",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byEmail, err := repo.GetByEmail(ctx, "admin@sweetshop.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, types.RoleAdmin, byEmail.Role)
	assert.Equal(t, "$2a$10$fakehash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@sweetshop.com", byID.Email)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.GetByEmail(context.Background(), "nobody@sweetshop.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := types.User{
		Email:        "customer@sweetshop.com",
		Role:         types.RoleCustomer,
		PasswordHash: "$2a$10$fakehash",
	}
	_, err := repo.Create(ctx, user)
	require.NoError(t, err)

	_, err = repo.Create(ctx, user)
	assert.ErrorIs(t, err, ErrDuplicate)
}
