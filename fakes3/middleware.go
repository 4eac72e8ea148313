package fakes3

import (
	"net/http"
)

// RequestVerifier checks the signature of an incoming request.
// *s3req.Verifier satisfies this.
type RequestVerifier interface {
	Verify(r *http.Request) error
}

// AuthMiddleware enforces signature verification on every request.
// A nil verifier disables authentication (public access).
func AuthMiddleware(verifier RequestVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Verifier failures wrap s3req.ErrUnauthorized, which
			// HandleError maps to a 403 XML error.
			if err := verifier.Verify(r); err != nil {
				HandleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
