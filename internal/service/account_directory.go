package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
	"github.com/sandeepkv93/authplus-license-service/internal/security"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidLicense    = errors.New("invalid license")
	ErrAccountNotFound   = repository.ErrAccountNotFound
	ErrInvalidInput      = errors.New("invalid input")
)

type AccountDirectory struct {
	accounts  repository.AccountRepository
	tx        repository.Transactor
	ledger    *LicenseLedger
	passwords security.PasswordStore
	now       func() time.Time
}

func NewAccountDirectory(
	accounts repository.AccountRepository,
	tx repository.Transactor,
	ledger *LicenseLedger,
	passwords security.PasswordStore,
) *AccountDirectory {
	return &AccountDirectory{
		accounts:  accounts,
		tx:        tx,
		ledger:    ledger,
		passwords: passwords,
		now:       time.Now,
	}
}

func (d *AccountDirectory) Exists(ctx context.Context, username string) (bool, error) {
	return d.accounts.Exists(ctx, username)
}

// Register creates an account against a license. The duplicate check runs
// before the license is consumed, and the whole sequence shares one
// transaction so a lost race on the username index restores the license.
func (d *AccountDirectory) Register(ctx context.Context, username, password, licenseKey string) (acct *domain.Account, err error) {
	start := time.Now()
	defer func() { d.record(ctx, "register", err, start) }()
	ctx, span := observability.StartSpan(ctx, "account.register")
	defer span.End()

	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	stored, err := d.passwords.Prepare(password)
	if err != nil {
		return nil, fmt.Errorf("prepare password: %w", err)
	}

	err = d.tx.WithinTransaction(ctx, func(licenses repository.LicenseRepository, accounts repository.AccountRepository) error {
		exists, err := accounts.Exists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateUsername
		}
		ok, err := d.ledger.ConsumeWith(ctx, licenses, licenseKey)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidLicense
		}
		acct = &domain.Account{
			Username:    username,
			Password:    stored,
			DateCreated: domain.Today(d.now()),
		}
		if err := accounts.Create(ctx, acct); err != nil {
			if errors.Is(err, repository.ErrAccountExists) {
				return ErrDuplicateUsername
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (d *AccountDirectory) Fetch(ctx context.Context, username string) (acct *domain.Account, err error) {
	start := time.Now()
	defer func() { d.record(ctx, "fetch", err, start) }()
	return d.accounts.FindByUsername(ctx, username)
}

func (d *AccountDirectory) Delete(ctx context.Context, username string) (err error) {
	start := time.Now()
	defer func() { d.record(ctx, "delete", err, start) }()
	return d.accounts.DeleteByUsername(ctx, username)
}

func (d *AccountDirectory) SetPassword(ctx context.Context, username, newPassword string) (err error) {
	start := time.Now()
	defer func() { d.record(ctx, "set_password", err, start) }()
	if newPassword == "" {
		return ErrInvalidInput
	}
	stored, err := d.passwords.Prepare(newPassword)
	if err != nil {
		return fmt.Errorf("prepare password: %w", err)
	}
	return d.accounts.UpdatePassword(ctx, username, stored)
}

func (d *AccountDirectory) SetNote(ctx context.Context, username, note string) (err error) {
	start := time.Now()
	defer func() { d.record(ctx, "set_note", err, start) }()
	return d.accounts.UpdateNote(ctx, username, note)
}

func (d *AccountDirectory) ResetHardwareID(ctx context.Context, username string) (err error) {
	start := time.Now()
	defer func() { d.record(ctx, "reset_hwid", err, start) }()
	return d.accounts.ResetHardwareID(ctx, username)
}

func (d *AccountDirectory) Count(ctx context.Context) (int64, error) {
	return d.accounts.Count(ctx)
}

func (d *AccountDirectory) record(ctx context.Context, op string, err error, start time.Time) {
	observability.RecordAccountOperation(ctx, op, accountOutcome(err), time.Since(start))
}

func accountOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, ErrInvalidLicense):
		return "invalid_license"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
