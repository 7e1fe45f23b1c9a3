package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

func remoteAddrSeen(trusted []netip.Prefix, peer, forwarded string) string {
	var seen string
	h := TrustedRealIP(trusted)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))
	req := httptest.NewRequest(http.MethodPost, "/account/login", nil)
	req.RemoteAddr = peer
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestTrustedRealIPIgnoresForwardingFromUntrustedPeer(t *testing.T) {
	if got := remoteAddrSeen(nil, "203.0.113.5:4000", "198.51.100.77"); got != "203.0.113.5:4000" {
		t.Fatalf("expected socket address without trusted proxies, got %q", got)
	}
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	if got := remoteAddrSeen(trusted, "203.0.113.5:4000", "198.51.100.77"); got != "203.0.113.5:4000" {
		t.Fatalf("expected forged header from outside proxy range to be ignored, got %q", got)
	}
}

func TestTrustedRealIPHonorsTrustedProxy(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	if got := remoteAddrSeen(trusted, "10.1.2.3:4000", "198.51.100.77"); got != "198.51.100.77" {
		t.Fatalf("expected forwarded client address from trusted proxy, got %q", got)
	}
	if got := remoteAddrSeen(trusted, "10.1.2.3:4000", ""); got != "10.1.2.3:4000" {
		t.Fatalf("expected proxy address when no header is forwarded, got %q", got)
	}
}

func TestTrustedRealIPKeepsRateLimitKeyStable(t *testing.T) {
	limited := TrustedRealIP(nil)(NewRateLimiter(1, time.Minute).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	codes := make([]int, 0, 2)
	for _, xff := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/account/login", nil)
		req.RemoteAddr = "203.0.113.5:4000"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected rotating X-Forwarded-For to share one window, got %v", codes)
	}
}
