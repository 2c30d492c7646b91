package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/db"
	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	user := &models.User{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Phone:        "9876543210",
		ProfileImage: "https://cdn.test/a.png",
		PasswordHash: "hash",
		Address:      types.Address{Shipping: types.AddressLine{Street: "1 Main", City: "Pune", Pincode: "411001"}},
	}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byPhone, err := repo.FindByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	user.FirstName = "Janet"
	user.Address.Billing = types.AddressLine{Street: "2 Side", City: "Mumbai", Pincode: "400001"}
	require.NoError(t, repo.Save(ctx, user))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, now))
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "rehashed"))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet", loaded.FirstName)
	assert.Equal(t, "Mumbai", loaded.Address.Billing.City)
	assert.Equal(t, "rehashed", loaded.PasswordHash)
	require.NotNil(t, loaded.LastLoginAt)
	assert.True(t, loaded.LastLoginAt.Equal(now))
}

func TestRepositoryDuplicateEmailIsUniqueViolation(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{FirstName: "A", LastName: "B", Email: "dup@example.com", Phone: "9876543210", PasswordHash: "h"}))
	err := repo.Create(ctx, &models.User{FirstName: "C", LastName: "D", Email: "dup@example.com", Phone: "9123456789", PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "email"))
	assert.Nil(t, uniqueConflict(nil))
	assert.NotNil(t, uniqueConflict(err))
}

func TestRepositoryHidesDeletedUsers(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := &models.User{FirstName: "A", LastName: "B", Email: "gone@example.com", Phone: "9876543210", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, conn.Delete(user).Error)

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
