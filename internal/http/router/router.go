package router

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/authplus-license-service/internal/health"
	"github.com/sandeepkv93/authplus-license-service/internal/http/handler"
	"github.com/sandeepkv93/authplus-license-service/internal/http/middleware"
	"github.com/sandeepkv93/authplus-license-service/internal/http/response"
)

type Dependencies struct {
	AccountHandler         *handler.AccountHandler
	LicenseHandler         *handler.LicenseHandler
	StatsHandler           *handler.StatsHandler
	AdminCredentials       middleware.Credentials
	ClientCredentials      middleware.Credentials
	CORSOrigins            []string
	TrustedProxies         []netip.Prefix
	APIRateLimitRPM        int
	GlobalRateLimiter      GlobalRateLimiterFunc
	RouteRateLimitPolicies RouteRateLimitPolicies
	Readiness              *health.ProbeRunner
	EnableOTelHTTP         bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type RouteRateLimitPolicies map[string]func(http.Handler) http.Handler

const (
	RoutePolicyLogin        = "login"
	RoutePolicyAdminRead    = "admin_read"
	RoutePolicyAdminWrite   = "admin_write"
	RoutePolicyLicenseIssue = "license_issue"
)

const (
	maxQueryBytes = 4 << 10
	maxBodyBytes  = 1 << 20
)

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.TrustedRealIP(dep.TrustedProxies))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.InputLimit(maxQueryBytes, maxBodyBytes))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	routePolicy := func(name string) func(http.Handler) http.Handler {
		if mw, ok := dep.RouteRateLimitPolicies[name]; ok && mw != nil {
			return mw
		}
		return func(next http.Handler) http.Handler { return next }
	}

	r.Get("/", handler.Root)
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	client := middleware.RequireTier(middleware.TierClient, dep.ClientCredentials)
	admin := middleware.RequireTier(middleware.TierAdmin, dep.AdminCredentials)

	r.Route("/account", func(r chi.Router) {
		r.With(routePolicy(RoutePolicyLogin), client).Post("/login", dep.AccountHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.With(routePolicy(RoutePolicyAdminRead)).Get("/fetch", dep.AccountHandler.Fetch)
			r.Group(func(r chi.Router) {
				r.Use(routePolicy(RoutePolicyAdminWrite))
				r.Post("/create", dep.AccountHandler.Create)
				r.Delete("/delete", dep.AccountHandler.Delete)
				r.Patch("/hwid", dep.AccountHandler.ResetHWID)
				r.Patch("/password", dep.AccountHandler.SetPassword)
				r.Patch("/note", dep.AccountHandler.SetNote)
			})
		})
	})
	r.With(admin, routePolicy(RoutePolicyLicenseIssue)).Post("/license/create", dep.LicenseHandler.Create)
	r.With(admin, routePolicy(RoutePolicyAdminRead)).Get("/stats", dep.StatsHandler.Get)

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
