package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/database/dbtest"
	"github.com/sandeepkv93/authplus-license-service/internal/health"
	"github.com/sandeepkv93/authplus-license-service/internal/http/handler"
	"github.com/sandeepkv93/authplus-license-service/internal/http/middleware"
	"github.com/sandeepkv93/authplus-license-service/internal/http/router"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

const testFernetKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="

var (
	adminCreds  = middleware.Credentials{Username: "ADMIN", Password: "admin-secret"}
	clientCreds = middleware.Credentials{Username: "CLIENT", Password: "client-secret"}
)

type licenseTestServerOptions struct {
	passwordMode  string
	guard         service.LoginGuard
	routePolicies router.RouteRateLimitPolicies
}

type licenseTestServer struct {
	t       *testing.T
	baseURL string
	http    *http.Client
	decoder *codec.Client
	ledger  *service.LicenseLedger
}

func newLicenseTestServer(t *testing.T, opts licenseTestServerOptions) *licenseTestServer {
	t.Helper()
	db := dbtest.Open(t)
	storeOpts := repository.StoreOptions{OperationTimeout: 5 * time.Second}
	licenses := repository.NewLicenseRepository(db, storeOpts)
	accounts := repository.NewAccountRepository(db, storeOpts)
	tx := repository.NewTransactor(db, storeOpts)

	passwords, err := security.NewPasswordStore(opts.passwordMode)
	if err != nil {
		t.Fatalf("password store: %v", err)
	}
	f, err := codec.NewFernet([]string{testFernetKey})
	if err != nil {
		t.Fatalf("fernet: %v", err)
	}
	enc := codec.NewResponseEncoder(f)

	ledger := service.NewLicenseLedger(licenses)
	directory := service.NewAccountDirectory(accounts, tx, ledger, passwords)
	engine := service.NewAuthorizationEngine(accounts, passwords, opts.guard, nil)
	stats := service.NewStatsService(directory, ledger)

	h := router.NewRouter(router.Dependencies{
		AccountHandler:         handler.NewAccountHandler(directory, engine, enc, nil),
		LicenseHandler:         handler.NewLicenseHandler(ledger, enc, nil),
		StatsHandler:           handler.NewStatsHandler(stats, enc, nil),
		AdminCredentials:       adminCreds,
		ClientCredentials:      clientCreds,
		APIRateLimitRPM:        10000,
		RouteRateLimitPolicies: opts.routePolicies,
		Readiness:              health.NewProbeRunner(time.Second, 0, health.NewDBChecker(db), health.NewSchemaChecker(db)),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &licenseTestServer{
		t:       t,
		baseURL: srv.URL,
		http:    srv.Client(),
		decoder: codec.NewClient(f),
		ledger:  ledger,
	}
}

// call sends one request and returns the response with its raw JSON body
// decoded into a flat map.
func (s *licenseTestServer) call(method, path string, query url.Values, creds *middleware.Credentials) (*http.Response, map[string]string) {
	s.t.Helper()
	target := s.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		s.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatalf("read body: %v", err)
	}
	fields := map[string]string{}
	_ = json.Unmarshal(raw, &fields)
	return resp, fields
}

// status performs a core call and returns the decrypted status classification
// and text.
func (s *licenseTestServer) status(method, path string, query url.Values, creds *middleware.Credentials) (codec.Status, string) {
	s.t.Helper()
	resp, fields := s.call(method, path, query, creds)
	if resp.StatusCode != http.StatusOK {
		s.t.Fatalf("%s %s: expected 200, got %d", method, path, resp.StatusCode)
	}
	st, text, err := s.decoder.Status(fields)
	if err != nil {
		s.t.Fatalf("%s %s: decode status: %v", method, path, err)
	}
	return st, text
}

func (s *licenseTestServer) decoded(method, path string, query url.Values, creds *middleware.Credentials) map[string]string {
	s.t.Helper()
	resp, fields := s.call(method, path, query, creds)
	if resp.StatusCode != http.StatusOK {
		s.t.Fatalf("%s %s: expected 200, got %d", method, path, resp.StatusCode)
	}
	plain, err := s.decoder.Decode(fields)
	if err != nil {
		s.t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return plain
}

func (s *licenseTestServer) issueLicense() string {
	s.t.Helper()
	plain := s.decoded(http.MethodPost, "/license/create", nil, &adminCreds)
	if len(plain["license"]) != 16 {
		s.t.Fatalf("unexpected license payload: %v", plain)
	}
	return plain["license"]
}

func (s *licenseTestServer) login(username, password, hwid string) codec.Status {
	s.t.Helper()
	st, _ := s.status(http.MethodPost, "/account/login", url.Values{
		"username": {username},
		"password": {password},
		"hwid":     {hwid},
	}, &clientCreds)
	return st
}
