package auth

import (
	"testing"

	"ledger-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestVerifySession_Nil(t *testing.T) {
	u, err := VerifySession(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifySession_NoAccountID(t *testing.T) {
	u, err := VerifySession(map[string]interface{}{
		"fullname": "Test",
		"email":    "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifySession_Valid(t *testing.T) {
	u, err := VerifySession(map[string]interface{}{
		"account_id": "550e8400-e29b-41d4-a716-446655440000",
		"fullname":   "Test User",
		"email":      "test@example.com",
		"role":       "trader",
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.AccountID)
	assert.Equal(t, "Test User", u.Fullname)
	assert.Equal(t, "trader", u.Role)
}

func TestLogin(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Account{}))
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Account{Email: "ada@example.com", Fullname: "Ada", PasswordHash: string(hash), Role: "trader"}).Error)

	finder := &GormAccountFinder{DB: db}
	a, err := finder.FindByEmailAndPassword("ada@example.com", "secret-123")
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.Fullname)

	_, err = finder.FindByEmailAndPassword("ada@example.com", "wrong")
	assert.Equal(t, ErrIncorrectPassword, err)
	_, err = finder.FindByEmailAndPassword("nobody@example.com", "secret-123")
	assert.Equal(t, ErrInvalidEmail, err)
	_, err = finder.FindByEmailAndPassword("", "")
	assert.Equal(t, ErrEmailPasswordRequired, err)
}
