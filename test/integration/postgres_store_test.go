//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sandeepkv93/authplus-license-service/internal/database"
	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

func TestPostgresSchemaStatus(t *testing.T) {
	db := newPostgresIntegrationDB(t)
	tables, err := database.Status(db)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, table := range tables {
		if !table.Exists {
			t.Fatalf("expected table %s to exist after migrate", table.Table)
		}
	}
}

func TestPostgresDuplicateKeysAreTranslated(t *testing.T) {
	db := newPostgresIntegrationDB(t)
	ctx := context.Background()
	licenses := repository.NewLicenseRepository(db, repository.StoreOptions{})
	accounts := repository.NewAccountRepository(db, repository.StoreOptions{})

	lic := &domain.License{Key: "ABCDEFGHIJKLMNOP", DateCreated: "10/18/2026"}
	if err := licenses.Create(ctx, lic); err != nil {
		t.Fatalf("create license: %v", err)
	}
	if err := licenses.Create(ctx, &domain.License{Key: lic.Key, DateCreated: lic.DateCreated}); !errors.Is(err, repository.ErrLicenseExists) {
		t.Fatalf("expected license exists, got %v", err)
	}

	acc := &domain.Account{Username: "alice", Password: "pw", DateCreated: "10/18/2026"}
	if err := accounts.Create(ctx, acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := accounts.Create(ctx, &domain.Account{Username: "alice", Password: "pw", DateCreated: "10/18/2026"}); !errors.Is(err, repository.ErrAccountExists) {
		t.Fatalf("expected account exists, got %v", err)
	}
}

func TestPostgresConcurrentConsumeHasOneWinner(t *testing.T) {
	db := newPostgresIntegrationDB(t)
	ctx := context.Background()
	ledger := service.NewLicenseLedger(repository.NewLicenseRepository(db, repository.StoreOptions{}))

	lic, err := ledger.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Consume(ctx, lic.Key)
			if err != nil {
				t.Errorf("consume: %v", err)
				return
			}
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Fatalf("expected exactly one consumer to win, got %d", wins.Load())
	}
	count, err := ledger.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no licenses left, got %d", count)
	}
}

func TestPostgresHardwareBindAndReset(t *testing.T) {
	db := newPostgresIntegrationDB(t)
	ctx := context.Background()
	accounts := repository.NewAccountRepository(db, repository.StoreOptions{})
	if err := accounts.Create(ctx, &domain.Account{Username: "bob", Password: "pw", DateCreated: "10/18/2026"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	bound, err := accounts.BindHardwareID(ctx, "bob", "HW-1")
	if err != nil || !bound {
		t.Fatalf("expected first bind to win, got %v %v", bound, err)
	}
	bound, err = accounts.BindHardwareID(ctx, "bob", "HW-2")
	if err != nil || bound {
		t.Fatalf("expected second bind to be rejected, got %v %v", bound, err)
	}
	if err := accounts.ResetHardwareID(ctx, "bob"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	acc, err := accounts.FindByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if acc.HardwareID != "" || acc.HWIDResets != 1 {
		t.Fatalf("unexpected account after reset: %+v", acc)
	}
	if err := accounts.ResetHardwareID(ctx, "nobody"); !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
