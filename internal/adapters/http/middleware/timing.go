package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"athleteportal/internal/adapters/http/perf"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 200 * time.Millisecond

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter atomic.Uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that logs request duration.
// Health checks are excluded. Normal requests log at DEBUG; requests at or
// above threshold log at WARN. A non-positive threshold uses DefaultSlowRequest.
// If collector is non-nil, entries are recorded for the perf endpoint.
func Timing(collector *perf.Collector, threshold time.Duration) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	thresholdMs := float64(threshold.Microseconds()) / 1000.0

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := requestIDCounter.Add(1)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				durationMs := float64(time.Since(start).Microseconds()) / 1000.0

				level := slog.LevelDebug
				msg := "request"
				if durationMs >= thresholdMs {
					level = slog.LevelWarn
					msg = "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"status", sw.status,
					"duration_ms", durationMs,
				)

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + path,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
