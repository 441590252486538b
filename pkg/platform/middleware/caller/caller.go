// Package caller resolves the bearer token on a request to the calling
// wallet and stores it on the request context.
package caller

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"microauth/pkg/requestcontext"
)

// TokenValidator turns a bearer token into the caller's wallet address.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Identify attaches the caller wallet when a valid bearer token is present.
// Requests without an Authorization header pass through anonymously; a
// present but invalid token is rejected with 401.
func Identify(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "malformed authorization header",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, "unauthorized", "authorization header must be 'Bearer <token>'")
				return
			}

			wallet, err := validator.Validate(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "caller token rejected",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, "unauthorized", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, wallet)))
		})
	}
}

func writeJSONError(w http.ResponseWriter, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="microauth"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}
