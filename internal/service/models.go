package service

import (
	"time"

	"github.com/launchbase/accountd/internal/domain"
)

// UserSummary is the minimal identity returned after login.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// SignUpResult confirms a created account. No token is issued at signup;
// login is a separate, required step.
type SignUpResult struct {
	Email string `json:"email"`
}

// LoginResult bundles the bearer token with the user summary.
type LoginResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// UserView is the administrative serialization of a user record. It carries
// everything a record browser needs and deliberately omits the hash.
type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPage is a paginated admin listing.
type UserPage struct {
	Users  []UserView `json:"users"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func newUserView(user domain.User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
