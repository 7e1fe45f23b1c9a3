package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	PasswordStoragePlaintext = "plaintext"
	PasswordStorageArgon2id  = "argon2id"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseDriver           string
	DatabaseURL              string
	DatabaseOperationTimeout time.Duration

	EncryptionKeys []string

	AdminUsername  string
	AdminPassword  string
	ClientUsername string
	ClientPassword string

	PasswordStorage    string
	CORSAllowedOrigins []string
	// TrustedProxies lists proxy addresses or CIDRs whose forwarded client
	// address headers are honored. Empty means the socket peer is the client.
	TrustedProxies []string

	APIRateLimitPerMin          int
	LoginRateLimitPerMin        int
	AdminReadRateLimitPerMin    int
	AdminWriteRateLimitPerMin   int
	LicenseIssueRateLimitPerMin int
	RateLimitRedisEnabled       bool
	RateLimitRedisPrefix        string
	RedisAddr                   string
	RedisPassword               string
	RedisDB                     int

	LoginGuardEnabled      bool
	LoginGuardRedisEnabled bool
	LoginGuardFreeAttempts int
	LoginGuardBaseDelay    time.Duration
	LoginGuardMultiplier   float64
	LoginGuardMaxDelay     time.Duration
	LoginGuardResetWindow  time.Duration

	LicenseExportEndpoint  string
	LicenseExportAccessKey string
	LicenseExportSecretKey string
	LicenseExportBucket    string
	LicenseExportUseSSL    bool

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:      env,
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DatabaseDriverPostgres)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		EncryptionKeys: splitCSV(os.Getenv("ENCRYPTION_KEY")),

		AdminUsername:  getEnv("ADMIN_USERNAME", "ADMIN"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		ClientUsername: getEnv("CLIENT_USERNAME", "CLIENT"),
		ClientPassword: os.Getenv("CLIENT_PASSWORD"),

		PasswordStorage:    strings.ToLower(getEnv("PASSWORD_STORAGE", PasswordStoragePlaintext)),
		CORSAllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:     splitCSV(os.Getenv("TRUSTED_PROXIES")),

		APIRateLimitPerMin:          getEnvInt("API_RATE_LIMIT_PER_MIN", 15),
		LoginRateLimitPerMin:        getEnvInt("LOGIN_RATE_LIMIT_PER_MIN", 5),
		AdminReadRateLimitPerMin:    getEnvInt("ADMIN_READ_RATE_LIMIT_PER_MIN", 30),
		AdminWriteRateLimitPerMin:   getEnvInt("ADMIN_WRITE_RATE_LIMIT_PER_MIN", 30),
		LicenseIssueRateLimitPerMin: getEnvInt("LICENSE_ISSUE_RATE_LIMIT_PER_MIN", 60),
		RateLimitRedisEnabled:       getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RateLimitRedisPrefix:        getEnv("RATE_LIMIT_REDIS_PREFIX", "authplus:rl"),
		RedisAddr:                   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:               os.Getenv("REDIS_PASSWORD"),
		RedisDB:                     getEnvInt("REDIS_DB", 0),

		LoginGuardEnabled:      getEnvBool("LOGIN_GUARD_ENABLED", true),
		LoginGuardRedisEnabled: getEnvBool("LOGIN_GUARD_REDIS_ENABLED", false),
		LoginGuardFreeAttempts: getEnvInt("LOGIN_GUARD_FREE_ATTEMPTS", 5),
		LoginGuardMultiplier:   getEnvFloat("LOGIN_GUARD_MULTIPLIER", 2),

		LicenseExportEndpoint:  os.Getenv("LICENSE_EXPORT_ENDPOINT"),
		LicenseExportAccessKey: os.Getenv("LICENSE_EXPORT_ACCESS_KEY"),
		LicenseExportSecretKey: os.Getenv("LICENSE_EXPORT_SECRET_KEY"),
		LicenseExportBucket:    getEnv("LICENSE_EXPORT_BUCKET", "license-batches"),
		LicenseExportUseSSL:    getEnvBool("LICENSE_EXPORT_USE_SSL", true),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "authplus-license-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"DATABASE_OPERATION_TIMEOUT", "5s", &cfg.DatabaseOperationTimeout},
		{"LOGIN_GUARD_BASE_DELAY", "2s", &cfg.LoginGuardBaseDelay},
		{"LOGIN_GUARD_MAX_DELAY", "5m", &cfg.LoginGuardMaxDelay},
		{"LOGIN_GUARD_RESET_WINDOW", "30m", &cfg.LoginGuardResetWindow},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "0s", &cfg.ServerStartGracePeriod},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	switch c.DatabaseDriver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		errs = append(errs, "DATABASE_DRIVER must be one of postgres, sqlite")
	}
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if !isLocalLikeEnv(c.Env) && c.DatabaseDriver == DatabaseDriverSQLite {
		errs = append(errs, "DATABASE_DRIVER=sqlite is only allowed in local environments")
	}
	if c.DatabaseOperationTimeout <= 0 {
		errs = append(errs, "DATABASE_OPERATION_TIMEOUT must be > 0")
	}
	if len(c.EncryptionKeys) == 0 {
		errs = append(errs, "ENCRYPTION_KEY is required")
	} else if _, err := fernet.DecodeKeys(c.EncryptionKeys...); err != nil {
		errs = append(errs, "ENCRYPTION_KEY must contain valid fernet keys")
	}
	if c.AdminUsername == "" || c.ClientUsername == "" {
		errs = append(errs, "ADMIN_USERNAME and CLIENT_USERNAME are required")
	}
	if c.AdminUsername == c.ClientUsername {
		errs = append(errs, "ADMIN_USERNAME and CLIENT_USERNAME must differ")
	}
	if len(c.AdminPassword) < 8 {
		errs = append(errs, "ADMIN_PASSWORD must be at least 8 chars")
	}
	if len(c.ClientPassword) < 8 {
		errs = append(errs, "CLIENT_PASSWORD must be at least 8 chars")
	}
	if c.AdminPassword != "" && c.AdminPassword == c.ClientPassword {
		errs = append(errs, "ADMIN_PASSWORD and CLIENT_PASSWORD must differ")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.PasswordStorage != PasswordStoragePlaintext && c.PasswordStorage != PasswordStorageArgon2id {
		errs = append(errs, "PASSWORD_STORAGE must be one of plaintext, argon2id")
	}
	limits := map[string]int{
		"API_RATE_LIMIT_PER_MIN":           c.APIRateLimitPerMin,
		"LOGIN_RATE_LIMIT_PER_MIN":         c.LoginRateLimitPerMin,
		"ADMIN_READ_RATE_LIMIT_PER_MIN":    c.AdminReadRateLimitPerMin,
		"ADMIN_WRITE_RATE_LIMIT_PER_MIN":   c.AdminWriteRateLimitPerMin,
		"LICENSE_ISSUE_RATE_LIMIT_PER_MIN": c.LicenseIssueRateLimitPerMin,
	}
	for _, key := range []string{
		"API_RATE_LIMIT_PER_MIN",
		"LOGIN_RATE_LIMIT_PER_MIN",
		"ADMIN_READ_RATE_LIMIT_PER_MIN",
		"ADMIN_WRITE_RATE_LIMIT_PER_MIN",
		"LICENSE_ISSUE_RATE_LIMIT_PER_MIN",
	} {
		if limits[key] <= 0 {
			errs = append(errs, key+" must be > 0")
		}
	}
	if (c.RateLimitRedisEnabled || c.LoginGuardRedisEnabled) && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when redis-backed limits are enabled")
	}
	if c.LoginGuardEnabled {
		if c.LoginGuardFreeAttempts < 0 {
			errs = append(errs, "LOGIN_GUARD_FREE_ATTEMPTS must be >= 0")
		}
		if c.LoginGuardMultiplier < 1 {
			errs = append(errs, "LOGIN_GUARD_MULTIPLIER must be >= 1")
		}
		if c.LoginGuardBaseDelay <= 0 || c.LoginGuardMaxDelay < c.LoginGuardBaseDelay {
			errs = append(errs, "LOGIN_GUARD_BASE_DELAY must be > 0 and <= LOGIN_GUARD_MAX_DELAY")
		}
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 || c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownObservabilityTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_* timeouts must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// LicenseExportConfigured reports whether object storage settings for
// license batch export are present. Only tooling reads them.
func (c *Config) LicenseExportConfigured() bool {
	return c.LicenseExportEndpoint != "" && c.LicenseExportAccessKey != "" && c.LicenseExportSecretKey != "" && c.LicenseExportBucket != ""
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is treated as a
// single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR", raw)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
