package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func tierProtected(t *testing.T, tier Tier, creds Credentials) http.Handler {
	t.Helper()
	return RequireTier(tier, creds)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := TierFromContext(r.Context())
		if !ok || got != tier {
			t.Fatalf("expected tier %q in context, got %q ok=%v", tier, got, ok)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireTier(t *testing.T) {
	admin := Credentials{Username: "ADMIN", Password: "admin-secret"}
	h := tierProtected(t, TierAdmin, admin)

	cases := []struct {
		name     string
		user     string
		pass     string
		withAuth bool
		want     int
	}{
		{"valid admin", "ADMIN", "admin-secret", true, http.StatusOK},
		{"client credentials on admin route", "CLIENT", "client-secret", true, http.StatusUnauthorized},
		{"wrong password", "ADMIN", "nope", true, http.StatusUnauthorized},
		{"username case matters", "admin", "admin-secret", true, http.StatusUnauthorized},
		{"missing header", "", "", false, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			if tc.withAuth {
				req.SetBasicAuth(tc.user, tc.pass)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
			if tc.want == http.StatusUnauthorized {
				if got := rr.Header().Get("WWW-Authenticate"); got != `Basic realm="authplus"` {
					t.Fatalf("expected basic challenge, got %q", got)
				}
			}
		})
	}
}

func TestRequireTierRejectsUnconfiguredCredentials(t *testing.T) {
	h := tierProtected(t, TierClient, Credentials{})
	req := httptest.NewRequest(http.MethodPost, "/account/login", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected empty configured credentials to reject, got %d", rr.Code)
	}
}
