package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/authplus-license-service/internal/security"
)

func TestAccountDirectoryRegisterConsumesLicense(t *testing.T) {
	s := newTestStack(t, nil, nil)
	ctx := context.Background()
	s.directory.now = func() time.Time { return time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC) }
	key := s.issue(t)

	acct, err := s.directory.Register(ctx, "alice", "pw1", key)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acct.HardwareID != "" || acct.HWIDResets != 0 || acct.Note != "" {
		t.Fatalf("expected fresh unbound account, got %+v", acct)
	}
	if acct.DateCreated != "12/01/2024" {
		t.Fatalf("unexpected date_created %q", acct.DateCreated)
	}
	if ok, _ := s.ledger.Consume(ctx, key); ok {
		t.Fatal("expected license to be consumed by registration")
	}
}

func TestAccountDirectoryDuplicateKeepsLicense(t *testing.T) {
	s := newTestStack(t, nil, nil)
	ctx := context.Background()
	s.register(t, "alice", "pw1")
	key := s.issue(t)

	if _, err := s.directory.Register(ctx, "alice", "other", key); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if ok, err := s.ledger.Consume(ctx, key); err != nil || !ok {
		t.Fatalf("expected license to survive duplicate registration, ok=%v err=%v", ok, err)
	}
}

func TestAccountDirectoryInvalidLicenseCreatesNothing(t *testing.T) {
	s := newTestStack(t, nil, nil)
	ctx := context.Background()
	key := s.issue(t)

	if _, err := s.directory.Register(ctx, "bob", "pw", "NOTALICENSE0000"); !errors.Is(err, ErrInvalidLicense) {
		t.Fatalf("expected ErrInvalidLicense, got %v", err)
	}
	if exists, _ := s.directory.Exists(ctx, "bob"); exists {
		t.Fatal("expected no account for invalid license")
	}
	if n, _ := s.ledger.Count(ctx); n != 1 {
		t.Fatalf("expected unrelated license %s to remain, count=%d", key, n)
	}
	if _, err := s.directory.Register(ctx, "bob", "pw", ""); !errors.Is(err, ErrInvalidLicense) {
		t.Fatalf("expected empty license to be invalid, got %v", err)
	}
	if _, err := s.directory.Register(ctx, "", "pw", key); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty username, got %v", err)
	}
}

func TestAccountDirectoryAdminOperations(t *testing.T) {
	s := newTestStack(t, nil, nil)
	ctx := context.Background()
	s.register(t, "alice", "pw1")

	if err := s.directory.SetNote(ctx, "alice", "vip"); err != nil {
		t.Fatalf("set note: %v", err)
	}
	if err := s.directory.SetPassword(ctx, "alice", "pw2"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := s.directory.SetPassword(ctx, "alice", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
	acct, err := s.directory.Fetch(ctx, "alice")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if acct.Note != "vip" || acct.Password != "pw2" {
		t.Fatalf("unexpected account after updates: %+v", acct)
	}

	for _, op := range []func() error{
		func() error { _, err := s.directory.Fetch(ctx, "ghost"); return err },
		func() error { return s.directory.Delete(ctx, "ghost") },
		func() error { return s.directory.SetNote(ctx, "ghost", "x") },
		func() error { return s.directory.SetPassword(ctx, "ghost", "x") },
		func() error { return s.directory.ResetHardwareID(ctx, "ghost") },
	} {
		if err := op(); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	}

	if err := s.directory.Delete(ctx, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.directory.Delete(ctx, "alice"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}

func TestAccountDirectoryArgon2idStoresHash(t *testing.T) {
	passwords, err := security.NewPasswordStore(security.ModeArgon2id)
	if err != nil {
		t.Fatalf("password store: %v", err)
	}
	s := newTestStack(t, passwords, nil)
	acct := s.register(t, "alice", "pw1")
	if acct.Password == "pw1" {
		t.Fatal("expected stored password to be hashed")
	}
	if !passwords.Verify(acct.Password, "pw1") {
		t.Fatal("expected stored hash to verify")
	}
}

func TestAccountDirectoryConcurrentRegisterSingleLicense(t *testing.T) {
	s := newTestStack(t, nil, nil)
	ctx := context.Background()
	key := s.issue(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.directory.Register(ctx, fmt.Sprintf("user%d", i), "pw", key)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInvalidLicense) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("expected exactly one registration to win the license, got %d", successes)
	}
	if n, _ := s.directory.Count(ctx); n != 1 {
		t.Fatalf("expected one account, got %d", n)
	}
}
