package ports

import (
	"context"
	"time"

	"github.com/inkpost/blog-api/internal/core/domain"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthResult is returned by both signup and login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.PublicUser
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenIssuer signs identity claims for a user.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// TokenVerifier checks a raw token and returns the identity it asserts.
// Any failure matches domain.ErrUnauthenticated.
type TokenVerifier interface {
	Verify(raw string) (domain.Identity, error)
}
