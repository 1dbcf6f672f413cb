package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
)

const (
	RequestIdHeader = "X-Request-Id"

	maxRequestIdLength = 64
)

// WithRequestId keeps a well formed incoming request id and replaces anything
// else with a fresh one, so ids can be logged verbatim.
func WithRequestId(next http.Handler, nextRequestId func() string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)
		if !validRequestId(requestId) {
			requestId = nextRequestId()
		}

		w.Header().Set(RequestIdHeader, requestId)
		next.ServeHTTP(w, r.WithContext(appcontext.WithRequestId(r.Context(), requestId)))
	})
}

func validRequestId(id string) bool {
	if id == "" || len(id) > maxRequestIdLength {
		return false
	}

	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}

	return true
}

func DefaultRequestIdProvider() string {
	return uuid.NewString()
}
