package auth

import (
	"errors"

	"ledger-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionAccount is the object stored in session and returned by /me.
type SessionAccount struct {
	AccountID string `json:"account_id"`
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// AccountFinder abstracts account lookup by email+password (GORM in production, fakes in tests).
type AccountFinder interface {
	FindByEmailAndPassword(email, password string) (*domain.Account, error)
}

type GormAccountFinder struct{ DB *gorm.DB }

func (g *GormAccountFinder) FindByEmailAndPassword(email, password string) (*domain.Account, error) {
	return Login(g.DB, LoginInput{Email: email, Password: password})
}

// Login finds the account by email and verifies the password.
func Login(db *gorm.DB, input LoginInput) (*domain.Account, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var a domain.Account
	if err := db.Where("email = ?", input.Email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if a.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &a, nil
}

// VerifySession validates the session user and returns the shape for /me.
func VerifySession(sessionUser interface{}) (*SessionAccount, error) {
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	id, _ := m["account_id"].(string)
	if id == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionAccount{
		AccountID: id,
		Fullname:  str(m["fullname"]),
		Email:     str(m["email"]),
		Role:      str(m["role"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
