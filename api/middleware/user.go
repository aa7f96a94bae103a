package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

const userHeader = "X-User"

type contextKey string

const ctxUser contextKey = "acting_user"

// ActingUser lifts the X-User header into the request context. The header
// carries the buyer or rep name the workflow attributes transitions to;
// authentication sits in front of this service and is not its concern.
func ActingUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(userHeader))

			ctx := r.Context()
			if user != "" {
				ctx = WithUser(ctx, user)
				if logg != nil {
					ctx = logg.WithUser(ctx, user)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the acting user, or empty when the header was
// absent.
func UserFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUser).(string); ok {
		return v
	}
	return ""
}

// WithUser injects the acting user into the context.
func WithUser(ctx context.Context, user string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}
