// Package auth covers login and token validation only. There is no role
// model; any authenticated user acts on their own cart, sessions, and
// bookings, and ownership checks live in the domain services.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	userdm "github.com/vqminh/tour-booking/internal/core/datamodel/user"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*userdm.User, error)
	GetByID(ctx context.Context, id int64) (*userdm.User, error)
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
