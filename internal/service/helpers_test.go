package service

import (
	"context"
	"testing"
	"time"

	"github.com/sandeepkv93/authplus-license-service/internal/database/dbtest"
	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
)

type testStack struct {
	ledger    *LicenseLedger
	directory *AccountDirectory
	engine    *AuthorizationEngine
	stats     *StatsService
	accounts  repository.AccountRepository
	licenses  repository.LicenseRepository
}

func newTestStack(t *testing.T, passwords security.PasswordStore, guard LoginGuard) *testStack {
	t.Helper()
	db := dbtest.Open(t)
	opts := repository.StoreOptions{OperationTimeout: 5 * time.Second}
	licenses := repository.NewLicenseRepository(db, opts)
	accounts := repository.NewAccountRepository(db, opts)
	if passwords == nil {
		passwords = security.PlaintextPasswords{}
	}
	ledger := NewLicenseLedger(licenses)
	directory := NewAccountDirectory(accounts, repository.NewTransactor(db, opts), ledger, passwords)
	return &testStack{
		ledger:    ledger,
		directory: directory,
		engine:    NewAuthorizationEngine(accounts, passwords, guard, nil),
		stats:     NewStatsService(directory, ledger),
		accounts:  accounts,
		licenses:  licenses,
	}
}

func (s *testStack) issue(t *testing.T) string {
	t.Helper()
	lic, err := s.ledger.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate license: %v", err)
	}
	return lic.Key
}

func (s *testStack) register(t *testing.T, username, password string) *domain.Account {
	t.Helper()
	acct, err := s.directory.Register(context.Background(), username, password, s.issue(t))
	if err != nil {
		t.Fatalf("register %q: %v", username, err)
	}
	return acct
}
