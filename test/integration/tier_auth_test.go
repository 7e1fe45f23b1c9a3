package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/sandeepkv93/authplus-license-service/internal/http/middleware"
)

func TestTierCredentialsAreEnforced(t *testing.T) {
	s := newLicenseTestServer(t, licenseTestServerOptions{})
	wrong := middleware.Credentials{Username: "ADMIN", Password: "guess"}

	cases := []struct {
		name   string
		method string
		path   string
		creds  *middleware.Credentials
	}{
		{"license create anonymous", http.MethodPost, "/license/create", nil},
		{"license create wrong password", http.MethodPost, "/license/create", &wrong},
		{"license create with client tier", http.MethodPost, "/license/create", &clientCreds},
		{"login with admin tier", http.MethodPost, "/account/login", &adminCreds},
		{"stats anonymous", http.MethodGet, "/stats", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := s.call(tc.method, tc.path, url.Values{"username": {"x"}}, tc.creds)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
			if resp.Header.Get("WWW-Authenticate") != `Basic realm="authplus"` {
				t.Fatalf("unexpected challenge %q", resp.Header.Get("WWW-Authenticate"))
			}
		})
	}

	n, err := s.ledger.Count(t.Context())
	if err != nil || n != 0 {
		t.Fatalf("rejected requests must not issue licenses, count=%d err=%v", n, err)
	}
}
