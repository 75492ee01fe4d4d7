package database

import (
	"context"
	"testing"

	"stayfinder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         models.RoleSeller,
	}
	require.NoError(t, db.CreateUser(ctx, user))
	require.NotZero(t, user.ID)

	got, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.RoleSeller, got.Role)

	byEmail, err := db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestCreateUserEmailTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "alice@example.com")

	dup := &models.User{Name: "Other", Email: "alice@example.com", PasswordHash: "h", Role: models.RoleUser}
	assert.ErrorIs(t, db.CreateUser(ctx, dup), ErrEmailTaken)
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetUserByID(ctx, 99)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
