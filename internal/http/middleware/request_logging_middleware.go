package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type requestTraceKey struct{}

// requestTrace is filled in by inner middleware so the outer logger can see
// which tier admitted the request.
type requestTrace struct {
	tier Tier
}

func traceFromContext(ctx context.Context) *requestTrace {
	tr, _ := ctx.Value(requestTraceKey{}).(*requestTrace)
	return tr
}

// StructuredRequestLogger emits one slog line per request. Query values are
// never logged because usernames, passwords and license keys travel there;
// only the parameter names are recorded.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tr := &requestTrace{}
		r = r.WithContext(context.WithValue(r.Context(), requestTraceKey{}, tr))
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		routePattern := ""
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			routePattern = routeCtx.RoutePattern()
		}
		tier := "public"
		if tr.tier != "" {
			tier = string(tr.tier)
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern,
			"tier", tier,
			"params", queryParamNames(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"client_ip", r.RemoteAddr,
		}

		switch {
		case status >= http.StatusInternalServerError:
			slog.ErrorContext(r.Context(), "http.request", attrs...)
		case status == http.StatusUnauthorized || status == http.StatusTooManyRequests:
			slog.WarnContext(r.Context(), "http.request", attrs...)
		default:
			slog.InfoContext(r.Context(), "http.request", attrs...)
		}
	})
}

func queryParamNames(r *http.Request) string {
	q := r.URL.Query()
	if len(q) == 0 {
		return ""
	}
	names := make([]string, 0, len(q))
	for k := range q {
		names = append(names, k)
	}
	slices.Sort(names)
	return strings.Join(names, ",")
}
