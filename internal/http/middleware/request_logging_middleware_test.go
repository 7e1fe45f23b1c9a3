package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func captureDefaultLogger(t *testing.T) *captureHandler {
	t.Helper()
	orig := slog.Default()
	cap := &captureHandler{}
	slog.SetDefault(slog.New(cap))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return cap
}

func TestStructuredRequestLoggerLevels(t *testing.T) {
	cap := captureDefaultLogger(t)

	r := chi.NewRouter()
	r.Use(StructuredRequestLogger)
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/denied", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/denied", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.10:3456"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(cap.records) != 3 {
		t.Fatalf("expected 3 log records, got %d", len(cap.records))
	}
	want := []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	for i, lvl := range want {
		if cap.records[i].Level != lvl {
			t.Fatalf("record %d: expected level %v, got %v", i, lvl, cap.records[i].Level)
		}
	}
	attrs := recordAttrs(cap.records[0])
	if attrs["route"] != "/ok" || attrs["status"] != "200" || attrs["tier"] != "public" {
		t.Fatalf("unexpected attrs for public request: %+v", attrs)
	}
	if attrs["client_ip"] == "" || attrs["duration_ms"] == "" {
		t.Fatalf("expected client_ip/duration attrs, got %+v", attrs)
	}
}

func TestStructuredRequestLoggerStatusFallbackTo200(t *testing.T) {
	cap := captureDefaultLogger(t)

	h := StructuredRequestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/none", nil))

	if len(cap.records) != 1 {
		t.Fatalf("expected one log record, got %d", len(cap.records))
	}
	if got := recordAttrs(cap.records[0])["status"]; got != "200" {
		t.Fatalf("expected fallback status 200, got %q", got)
	}
}

func TestStructuredRequestLoggerRecordsParamNamesOnly(t *testing.T) {
	cap := captureDefaultLogger(t)

	h := StructuredRequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/account/login?username=alice&password=hunter22&hwid=H1", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(cap.records) != 1 {
		t.Fatalf("expected one log record, got %d", len(cap.records))
	}
	attrs := recordAttrs(cap.records[0])
	if attrs["path"] != "/account/login" {
		t.Fatalf("expected bare path, got %q", attrs["path"])
	}
	if attrs["params"] != "hwid,password,username" {
		t.Fatalf("expected sorted param names, got %q", attrs["params"])
	}
	for k, v := range attrs {
		if strings.Contains(v, "hunter22") || strings.Contains(v, "alice") {
			t.Fatalf("attr %s leaked query values: %q", k, v)
		}
	}
}

func TestStructuredRequestLoggerRecordsAdmittedTier(t *testing.T) {
	cap := captureDefaultLogger(t)

	creds := Credentials{Username: "ADMIN", Password: "admin-secret"}
	h := StructuredRequestLogger(RequireTier(TierAdmin, creds)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.SetBasicAuth("ADMIN", "admin-secret")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := recordAttrs(cap.records[0])["tier"]; got != "admin" {
		t.Fatalf("expected admin tier in log, got %q", got)
	}
}

func recordAttrs(rec slog.Record) map[string]string {
	out := map[string]string{}
	rec.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}
