package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/session"
)

type ctxKey string

const sessionKey ctxKey = "session"

// BearerAuth attaches a session when the request carries a bearer token.
// Handlers that need one answer 401 themselves; public routes ignore it.
func BearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := withSession(r.Context(), session.NewBearer(token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request and forwards
// it on backend calls made for the request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := backend.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func sessionFromContext(ctx context.Context) session.Session {
	if s, ok := ctx.Value(sessionKey).(session.Session); ok {
		return s
	}
	return nil
}
