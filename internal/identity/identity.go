// Package identity verifies caller credentials. The gateway only needs a
// principal id back; everything else in the token is ignored.
package identity

import (
	"context"
	"errors"

	"aigate-api/internal/config"
	"aigate-api/internal/shared"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier turns a bearer credential into a principal id. Any error means
// the caller is unauthorized.
type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

var errNoSubject = errors.New("token has no subject")

// JWTVerifier checks HS256 tokens signed with the shared identity secret.
// The subject claim is the principal.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(cfg config.IdentityConfig) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTVerifier{
		secret: []byte(cfg.JWTSecret),
		parser: jwt.NewParser(opts...),
	}
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := v.parser.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", unauthorized(err)
	}
	if claims.Subject == "" {
		return "", unauthorized(errNoSubject)
	}
	return claims.Subject, nil
}

func unauthorized(cause error) error {
	return &shared.RequestError{
		Kind:    shared.KindUnauthorized,
		Message: shared.ErrInvalidToken.Message,
		Err:     cause,
	}
}
