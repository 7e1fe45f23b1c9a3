package middleware

import (
	"context"
	"net/http"

	"github.com/sandeepkv93/authplus-license-service/internal/http/response"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
)

type contextKey string

const TierContextKey contextKey = "tier"

type Tier string

const (
	TierAdmin  Tier = "admin"
	TierClient Tier = "client"
)

const basicRealm = `Basic realm="authplus"`

type Credentials struct {
	Username string
	Password string
}

// RequireTier admits only requests whose Basic credentials match creds
// exactly. Username and password are always both compared.
func RequireTier(tier Tier, creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			userOK := security.ConstantTimeEqual(username, creds.Username)
			passOK := security.ConstantTimeEqual(password, creds.Password)
			if !ok || !userOK || !passOK || creds.Username == "" {
				outcome := "denied"
				if !ok {
					outcome = "missing"
				}
				observability.RecordTierAuth(r.Context(), string(tier), outcome)
				w.Header().Set("WWW-Authenticate", basicRealm)
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", nil)
				return
			}
			observability.RecordTierAuth(r.Context(), string(tier), "allowed")
			if tr := traceFromContext(r.Context()); tr != nil {
				tr.tier = tier
			}
			ctx := context.WithValue(r.Context(), TierContextKey, tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TierFromContext(ctx context.Context) (Tier, bool) {
	t, ok := ctx.Value(TierContextKey).(Tier)
	return t, ok
}
