package observability

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware assigns every request an id and echoes it back in the
// response. An id supplied by the caller is kept as-is, so a firm's own
// gateway logs stay correlatable with ours.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
	})
}

// requestNote is filled in by the answer handler while the request runs, so
// the access log can report which firm asked and how the request ended
// without the handler emitting a second log line.
type requestNote struct {
	tenant  string
	outcome string
}

func withRequestNote(ctx context.Context) (context.Context, *requestNote) {
	note := &requestNote{}
	return context.WithValue(ctx, noteKey, note), note
}

// MarkTenant records the firm schema a request was asked against.
func MarkTenant(ctx context.Context, tenant string) {
	if note, ok := ctx.Value(noteKey).(*requestNote); ok {
		note.tenant = tenant
	}
}

// MarkOutcome records how the request ended: "answered", "rejected", or
// "failed".
func MarkOutcome(ctx context.Context, outcome string) {
	if note, ok := ctx.Value(noteKey).(*requestNote); ok {
		note.outcome = outcome
	}
}

func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, note := withRequestNote(r.Context())
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("method", r.Method),
				slog.String("route", RouteLabel(r.URL.Path)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", recorder.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", recorder.bytes),
			}
			if note.tenant != "" {
				attrs = append(attrs, slog.String("tenant", note.tenant))
			}
			if note.outcome != "" {
				attrs = append(attrs, slog.String("outcome", note.outcome))
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "http_request", attrs...)
		})
	}
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := RouteLabel(r.URL.Path)
		status := strconv.Itoa(recorder.status)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDurationSeconds.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(body []byte) (int, error) {
	n, err := r.ResponseWriter.Write(body)
	r.bytes += n
	return n, err
}
