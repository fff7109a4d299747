package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gstbill/gstbill/internal/platform/httpx"
	"github.com/gstbill/gstbill/internal/shared"
)

// SessionCookie is the cookie the browser client stores its token under.
const SessionCookie = "gstbill_session"

// Middleware resolves the request identity and stores the owner id in
// context. Requests without a token pass through unauthenticated so that
// preview-only endpoints keep working.
func Middleware(store TokenStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(SessionCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ownerID, err := store.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, shared.ErrUnauthenticated) {
					logger.Error("resolve session token", slog.Any("error", err))
					httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := shared.ContextWithOwner(r.Context(), ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner rejects requests that carry no authenticated owner.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.OwnerFromContext(r.Context()) == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
