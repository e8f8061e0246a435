// Package auth verifies connection credentials and resolves identities.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

// JWTVerifier checks an HS256 token's signature and expiry, then
// resolves the subject against the user directory. The directory is the
// source of truth for name, role and the active flag; the token only
// proves who is asking.
type JWTVerifier struct {
	secret []byte
	users  core.UserDirectory
}

func NewJWTVerifier(secret string, users core.UserDirectory) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), users: users}
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, core.Errf(core.CodeUnauthenticated, "auth", "missing token")
	}
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, core.Errf(core.CodeUnauthenticated, "auth", "invalid token: %v", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, core.Errf(core.CodeUnauthenticated, "auth", "token has no subject")
	}

	id, err := v.users.FindUser(ctx, domain.UserID(claims.Subject))
	if err != nil {
		return domain.Identity{}, core.Errf(core.CodeUnauthenticated, "auth", "unknown user")
	}
	if !id.Active {
		return domain.Identity{}, core.Errf(core.CodeUnauthenticated, "auth", "account is inactive")
	}
	return id, nil
}
