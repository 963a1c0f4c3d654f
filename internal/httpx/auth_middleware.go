package httpx

import (
	"context"
	"net/http"
	"strings"

	"elibrary/internal/platform/crypto"

	"github.com/rs/zerolog/log"
)

// Blacklist reports revoked access tokens by jti.
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// BearerToken extracts the access token from the Authorization header, then
// from the access cookie.
func BearerToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return CookieValue(r, AccessCookieName)
}

// AuthMiddleware resolves the caller identity and rejects anonymous requests
// with 401.
func AuthMiddleware(secret string, blacklist Blacklist) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				Unauthorized(w, r)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				Unauthorized(w, r)
				return
			}

			if blacklist != nil {
				revoked, err := blacklist.IsBlacklisted(r.Context(), claims.ID)
				if err != nil {
					log.Error().Err(err).Str("request_id", RequestIDFrom(r)).Msg("blacklist lookup")
					Unauthorized(w, r)
					return
				}
				if revoked {
					Unauthorized(w, r)
					return
				}
			}

			recordCaller(r.Context(), claims.Name)
			ctx := ContextWithUser(r.Context(), claims.Sub, claims.Name, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
