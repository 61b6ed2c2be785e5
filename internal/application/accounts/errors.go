package accounts

import "errors"

var (
	ErrAccountNotFound   = errors.New("Account not found")
	ErrEmailTaken        = errors.New("Email already registered")
	ErrInvalidEmail      = errors.New("Invalid email format")
	ErrInvalidPassword   = errors.New("Invalid password format")
	ErrInvalidFullname   = errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	ErrInvalidRole       = errors.New("Invalid role")
	ErrInsufficientFunds = errors.New("Insufficient wallet balance")
	ErrInvalidAmount     = errors.New("Amount must be a positive number")
)
