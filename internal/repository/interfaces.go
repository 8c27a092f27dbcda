package repository

import (
	"context"

	"github.com/launchbase/accountd/internal/domain"
)

// UserRepository is the credential store contract. Emails are stored already
// normalized; callers are responsible for trimming and lower-casing.
type UserRepository interface {
	// Create persists a new user in a single atomic write. It returns
	// domain.ErrDuplicateEmail when the normalized email is already taken,
	// including under concurrent signups for the same email.
	Create(ctx context.Context, user domain.User) (domain.User, error)
	// GetByEmail looks up a user by exact normalized email and returns
	// domain.ErrUserNotFound when absent.
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id int64) error
}
