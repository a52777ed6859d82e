package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// callerKey is the context key under which the authenticated caller
// identity is stored.
type callerKey struct{}

// AnonymousCaller is the identity used when authentication is disabled.
const AnonymousCaller = "anonymous"

// CallerFromContext returns the caller identity set by APIKeyAuth, or
// AnonymousCaller when none was set.
func CallerFromContext(ctx context.Context) string {
	if caller, ok := ctx.Value(callerKey{}).(string); ok && caller != "" {
		return caller
	}
	return AnonymousCaller
}

// WithCaller returns a context carrying the given caller identity. Exposed
// for tests and for callers embedding the engine without HTTP.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// APIKeyAuth returns middleware that authenticates requests by API key,
// taken from the Authorization header or the api_key query parameter. The
// resolved caller identity is stored on the request context; downstream
// components receive it as an explicit parameter and never inspect auth
// state themselves. When enabled is false every request passes through as
// AnonymousCaller.
func APIKeyAuth(enabled bool, keys map[string]string, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if !enabled {
			return func(w http.ResponseWriter, r *http.Request) {
				next(w, r.WithContext(WithCaller(r.Context(), AnonymousCaller)))
			}
		}

		return func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("Authorization")
			if presented == "" {
				presented = r.URL.Query().Get("api_key")
			}
			if presented == "" {
				unauthorized(w, logger, "missing API key")
				return
			}

			for caller, key := range keys {
				if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
					next(w, r.WithContext(WithCaller(r.Context(), caller)))
					return
				}
			}

			unauthorized(w, logger, "unrecognized API key")
		}
	}
}

func unauthorized(w http.ResponseWriter, logger *zap.Logger, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	}); err != nil && logger != nil {
		logger.Error("Failed to write unauthorized response", zap.Error(err))
	}
}
