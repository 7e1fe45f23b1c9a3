package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sandeepkv93/authplus-license-service/internal/config"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func recordEveryHelper(ctx context.Context) {
	RecordLicenseOperation(ctx, "consume", "success")
	RecordAccountOperation(ctx, "register", "duplicate", 3*time.Millisecond)
	RecordLoginAttempt(ctx, "failure", "hwid_mismatch")
	RecordHWIDBind(ctx, "bound")
	RecordTierAuth(ctx, "admin", "denied")
	RecordRateLimitDecision(ctx, "login", "deny", "local")
	RecordRateLimitRetryAfter(ctx, "login", time.Second)
	RecordLoginGuardEvent(ctx, "check", "throttled")
	RecordLoginGuardCooldown(ctx, "failure", 2*time.Second)
	RecordCodecEvent(ctx, "encrypt", "success")
	RecordRepositoryOperation(ctx, "account", "bind_hwid", "success")
	RecordHealthCheckResult(ctx, "db", "ready")
	RecordHealthCheckDuration(ctx, "db", 5*time.Millisecond)
	RecordDatabaseStartupEvent(ctx, "migrate", "success")
	RecordDatabaseStartupDuration(ctx, "migrate", 15*time.Millisecond)
	RecordToolCommandRun(ctx, "licensectl", "generate", "success")
	RecordToolCommandDuration(ctx, "migrate", "up", "success", 30*time.Millisecond)
	RecordLoadgenRequest(ctx, "2xx", "login")
	RecordMiddlewareEvent(ctx, "cors", "preflight")
}

func TestRecordMetricHelpersNoPanicWhenUninitialized(t *testing.T) {
	metricsMu.Lock()
	appMetrics = nil
	metricsMu.Unlock()

	recordEveryHelper(context.Background())
}

func TestRecordMetricHelpersEmitExpectedLabelCardinality(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	m, err := newAppMetrics(provider.Meter("observability-test"))
	if err != nil {
		t.Fatalf("create metrics: %v", err)
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()
	defer func() {
		metricsMu.Lock()
		appMetrics = nil
		metricsMu.Unlock()
	}()

	recordEveryHelper(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}

	expected := map[string]int{
		"license.operation.events":    2,
		"account.operation.events":    2,
		"account.operation.duration":  2,
		"auth.login.attempts":         2,
		"auth.hwid.bind.events":       1,
		"auth.tier.events":            2,
		"http.rate_limit.decisions":   3,
		"http.rate_limit.retry_after": 1,
		"auth.login_guard.events":     2,
		"auth.login_guard.cooldown":   1,
		"codec.events":                2,
		"repository.operations":       3,
		"health.check.results":        2,
		"health.check.duration":       1,
		"database.startup.events":     2,
		"database.startup.duration":   1,
		"tool.command.runs":           3,
		"tool.command.duration":       3,
		"loadgen.requests":            2,
	}

	observed := collectLabelCardinality(t, rm)
	for metricName, want := range expected {
		got, ok := observed[metricName]
		if !ok {
			t.Fatalf("missing metric datapoint for %s", metricName)
		}
		if got != want {
			t.Fatalf("metric %s label cardinality mismatch: got=%d want=%d", metricName, got, want)
		}
	}
}

func TestInitMetricsDisabledReturnsProvider(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{OTELMetricsEnabled: false}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("init metrics disabled: %v", err)
	}
	if mp == nil {
		t.Fatal("expected non-nil meter provider")
	}
	_ = mp.Shutdown(ctx)
}

func TestRedisCommandStatus(t *testing.T) {
	cases := map[string]error{
		"success": nil,
		"miss":    redis.Nil,
		"timeout": context.DeadlineExceeded,
		"error":   errors.New("boom"),
	}
	for want, err := range cases {
		if got := redisCommandStatus(err); got != want {
			t.Fatalf("status for %v: got=%s want=%s", err, got, want)
		}
	}
}

func collectLabelCardinality(t *testing.T, rm metricdata.ResourceMetrics) map[string]int {
	t.Helper()
	out := map[string]int{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Attributes.Len()
				}
			case metricdata.Histogram[float64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Attributes.Len()
				}
			}
		}
	}
	return out
}
