package authn

import (
	"context"
	"log/slog"
	"net/http"

	"user_service/internal/http_server/handlers"
	"user_service/internal/models"

	"github.com/go-chi/chi/middleware"
)

type ctxKey struct{}

type Authenticator interface {
	Authenticate(authorization string) (models.Claims, error)
}

// New rejects requests without a valid access token and stores its claims
// in the request context.
func New(log *slog.Logger, a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				log := log.With(
					slog.String("op", "middleware.authn"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				handlers.RespondError(w, r, log, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims models.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (models.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(models.Claims)
	return claims, ok
}
