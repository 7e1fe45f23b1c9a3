package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/observability"
)

// StoreOptions bounds every store round trip.
type StoreOptions struct {
	OperationTimeout time.Duration
}

func (o StoreOptions) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.OperationTimeout)
}

// Transactor runs fn with repositories scoped to a single transaction. The
// transaction rolls back when fn returns an error.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(licenses LicenseRepository, accounts AccountRepository) error) error
}

type GormTransactor struct {
	db   *gorm.DB
	opts StoreOptions
}

func NewTransactor(db *gorm.DB, opts StoreOptions) Transactor {
	return &GormTransactor{db: db, opts: opts}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(LicenseRepository, AccountRepository) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormLicenseRepository{db: tx, opts: t.opts}, &GormAccountRepository{db: tx, opts: t.opts})
	})
	outcome := "commit"
	if err != nil {
		outcome = "rollback"
	}
	observability.RecordRepositoryOperation(ctx, "store", "transaction", outcome)
	return err
}
