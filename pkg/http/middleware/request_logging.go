package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
)

// responseRecorder remembers what the handler sent so it can be logged after
// the handler returns.
type responseRecorder struct {
	http.ResponseWriter

	status      int
	bytes       int
	wroteHeader bool
}

func (rec *responseRecorder) WriteHeader(status int) {
	if !rec.wroteHeader {
		rec.status = status
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}

	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// WithRequestLogging logs one entry per request once the handler returns,
// server errors at error level. Wrap it with WithRequestId to get the
// request id field.
func WithRequestLogging(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		startAt := time.Now()

		next.ServeHTTP(rec, r)

		entry := appcontext.LoggerFromContext(logger, r.Context()).WithFields(logrus.Fields{
			"remote_addr":    r.RemoteAddr,
			"method":         r.Method,
			"request_uri":    r.RequestURI,
			"status":         rec.status,
			"content_length": rec.bytes,
			"user_agent":     r.UserAgent(),
			"duration_ms":    time.Since(startAt).Milliseconds(),
		})

		if rec.status >= http.StatusInternalServerError {
			entry.Error("Status request failed")
			return
		}

		entry.Info("Status request served")
	})
}
