package middleware

import (
	"net/http"
	"time"

	"lineage/pkg/requestcontext"
)

// RequestTime pins a single timestamp for the whole request so every
// record touched in one call carries the same creation time.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
