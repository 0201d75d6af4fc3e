package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tourstats/internal/logging"
)

// filterParams are the dashboard query parameters worth attaching to access logs.
var filterParams = []string{"year_min", "year_max", "capacity_min", "capacity_max", "tour", "country", "song"}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status != 0 {
		return
	}
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) statusCode() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

// RequestLogging tags each request with an X-Request-ID and writes one access
// log line when it completes. Health and metrics scrapes log at debug.
func RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", requestID)
			r = r.WithContext(context.WithValue(r.Context(), logging.RequestIDKey, requestID))

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.statusCode()
			event := accessEvent(r.URL.Path, status)
			if filters := filterDict(r); filters != nil {
				event = event.Dict("filters", filters)
			}
			event.
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status_code", status).
				Int("bytes", rec.bytes).
				Dur("duration_ms", time.Since(start)).
				Msg("HTTP request completed")
		})
	}
}

func accessEvent(path string, status int) *zerolog.Event {
	switch {
	case status >= 500:
		return log.Error()
	case status >= 400:
		return log.Warn()
	case path == "/health" || strings.HasSuffix(path, "/metrics"):
		return log.Debug()
	default:
		return log.Info()
	}
}

// filterDict collects the dashboard filter parameters present on r, or nil.
func filterDict(r *http.Request) *zerolog.Event {
	query := r.URL.Query()
	var dict *zerolog.Event
	for _, key := range filterParams {
		values := query[key]
		if len(values) == 0 {
			continue
		}
		if dict == nil {
			dict = zerolog.Dict()
		}
		if len(values) == 1 {
			dict = dict.Str(key, values[0])
		} else {
			dict = dict.Strs(key, values)
		}
	}
	return dict
}

// Recovery turns a handler panic into a 500 and logs it with the request id.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logging.WithContext(r.Context()).Error().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Interface("panic", err).
						Msg("Recovered from panic")

					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
