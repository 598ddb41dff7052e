package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avatarworks/gateway/internal/session"
)

type contextKey string

const sessionTokenKey contextKey = "session_token"

// SessionToken extracts the verified session token placed by Sessions.
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey).(string)
	return token
}

// Sessions verifies the signed session cookie, issuing a fresh one when
// the cookie is missing, tampered with, or expired. Every request ends up
// with a live session and its token in the request context; each request
// extends the session's idle deadline and re-signs the cookie so the
// signed expiry slides with it. A continuously active session is never
// replaced.
func Sessions(codec *session.TokenCodec, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			if cookie, err := r.Cookie(session.CookieName); err == nil {
				if id, err := codec.Verify(cookie.Value); err == nil {
					token = id
					if signed, err := codec.Sign(id); err == nil {
						http.SetCookie(w, codec.Cookie(signed))
					}
				}
			}

			if token == "" {
				id, signed, err := codec.Issue()
				if err != nil {
					slog.Error("failed to issue session token", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				token = id
				http.SetCookie(w, codec.Cookie(signed))
			}

			sessions.StartOrGet(token)

			ctx := context.WithValue(r.Context(), sessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
