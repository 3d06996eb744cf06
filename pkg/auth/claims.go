package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vastra-shop/backend/pkg/enums"
)

// AccessTokenClaims is the JWT payload issued by the identity service and
// consumed here. The settlement core never mints tokens for end users; Mint
// exists for tests and local tooling.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input used to mint a token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}
