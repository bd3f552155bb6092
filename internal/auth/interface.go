package auth

import "coursecraft/internal/domain/models"

// JWTVerifier validates bearer tokens from the identity provider.
type JWTVerifier interface {
	// VerifyToken validates a JWT and extracts its claims.
	VerifyToken(tokenString string) (*models.AuthorClaims, error)

	// Close releases resources held by the verifier.
	Close() error
}
