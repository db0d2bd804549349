// Package requestid assigns each request an opaque identifier for log
// correlation. Incoming X-Request-Id headers are honored so identifiers
// survive proxy hops.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"veil/pkg/requestcontext"
)

// Header is the request id header read from and echoed to clients.
const Header = "X-Request-Id"

// Middleware ensures every request carries a request id in its context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
