package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/internal/service"
)

const authClaimsKey = "auth_claims"

// AccessTokenVerifier valida access tokens y consulta la denylist de logout.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (service.AccessClaims, error)
	IsAccessTokenRevoked(ctx context.Context, jti string) bool
}

// JWTAuthMiddleware valida el bearer token y guarda claims en el contexto.
// Distingue TOKEN_EXPIRED (el cliente debe refrescar) de TOKEN_INVALID.
func JWTAuthMiddleware(verifier AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			respondError(c, http.StatusInternalServerError, CodeInternal, "jwt not configured")
			return
		}

		token := bearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, CodeTokenMissing, "missing bearer token")
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				respondError(c, http.StatusUnauthorized, CodeTokenExpired, "access token expired")
				return
			}
			respondError(c, http.StatusUnauthorized, CodeTokenInvalid, "invalid access token")
			return
		}
		if verifier.IsAccessTokenRevoked(c.Request.Context(), claims.ID) {
			respondError(c, http.StatusUnauthorized, CodeTokenRevoked, "access token revoked")
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.AccessClaims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.AccessClaims{}, false
	}
	claims, ok := val.(service.AccessClaims)
	return claims, ok
}
