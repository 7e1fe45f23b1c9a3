package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/authplus-license-service/internal/config"
	"github.com/sandeepkv93/authplus-license-service/internal/database/dbtest"
)

func TestNewCopiesShutdownTimeouts(t *testing.T) {
	cfg := &config.Config{
		ShutdownTimeout:              3 * time.Second,
		ShutdownHTTPDrainTimeout:     2 * time.Second,
		ShutdownObservabilityTimeout: time.Second,
	}
	a := New(cfg, nil, nil, nil, nil, nil, nil)
	if a.ShutdownTimeout != 3*time.Second || a.ShutdownHTTPDrainTimeout != 2*time.Second || a.ShutdownObservabilityTimeout != time.Second {
		t.Fatalf("unexpected shutdown timeouts: %+v", a)
	}
}

func TestShutdownClosesDependencies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	db := dbtest.Open(t)
	srv := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}

	a := New(&config.Config{}, nil, srv, nil, db, client, nil)
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := client.Ping(context.Background()).Err(); err == nil {
		t.Fatal("expected redis client to be closed")
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("expected database to be closed")
	}
}

func TestShutdownWithoutDependencies(t *testing.T) {
	a := New(nil, nil, nil, nil, nil, nil, nil)
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("expected empty shutdown to succeed, got %v", err)
	}
}
