package domain

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the credential store.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is the sole persisted entity: an account identified by a normalized
// email plus a salted password hash. The hash is owned by the repository and
// password packages; it must never appear in any serialized output.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
