package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// AccountRepository exposes exact-match operations on accounts keyed by username.
type AccountRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, account *domain.Account) error
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	DeleteByUsername(ctx context.Context, username string) error
	UpdatePassword(ctx context.Context, username, password string) error
	UpdateNote(ctx context.Context, username, note string) error
	// BindHardwareID sets hardware_id only while it is still empty and
	// reports whether this call performed the bind.
	BindHardwareID(ctx context.Context, username, hwid string) (bool, error)
	// ResetHardwareID clears hardware_id and increments hwid_resets in one statement.
	ResetHardwareID(ctx context.Context, username string) error
	Count(ctx context.Context) (int64, error)
}

type GormAccountRepository struct {
	db   *gorm.DB
	opts StoreOptions
}

func NewAccountRepository(db *gorm.DB, opts StoreOptions) AccountRepository {
	return &GormAccountRepository{db: db, opts: opts}
}

func (r *GormAccountRepository) Exists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).Where("username = ?", username).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "account", "exists", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "account", "exists", "success")
	return n > 0, nil
}

func (r *GormAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "account", "create", "duplicate")
			return ErrAccountExists
		}
		observability.RecordRepositoryOperation(ctx, "account", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "account", "create", "success")
	return nil
}

func (r *GormAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	var account domain.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "account", "find_by_username", "not_found")
			return nil, ErrAccountNotFound
		}
		observability.RecordRepositoryOperation(ctx, "account", "find_by_username", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "account", "find_by_username", "success")
	return &account, nil
}

func (r *GormAccountRepository) DeleteByUsername(ctx context.Context, username string) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&domain.Account{})
	return r.affectedOne(ctx, "delete_by_username", res)
}

func (r *GormAccountRepository) UpdatePassword(ctx context.Context, username, password string) error {
	return r.update(ctx, "update_password", username, map[string]any{"password": password})
}

func (r *GormAccountRepository) UpdateNote(ctx context.Context, username, note string) error {
	return r.update(ctx, "update_note", username, map[string]any{"note": note})
}

func (r *GormAccountRepository) ResetHardwareID(ctx context.Context, username string) error {
	return r.update(ctx, "reset_hardware_id", username, map[string]any{
		"hardware_id": "",
		"hwid_resets": gorm.Expr("hwid_resets + 1"),
	})
}

func (r *GormAccountRepository) BindHardwareID(ctx context.Context, username, hwid string) (bool, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("username = ? AND hardware_id = ?", username, "").
		Update("hardware_id", hwid)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "account", "bind_hardware_id", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "account", "bind_hardware_id", "noop")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "account", "bind_hardware_id", "success")
	return true, nil
}

func (r *GormAccountRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "account", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "account", "count", "success")
	return n, nil
}

func (r *GormAccountRepository) update(ctx context.Context, op, username string, updates map[string]any) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	res := r.db.WithContext(ctx).Model(&domain.Account{}).Where("username = ?", username).Updates(updates)
	return r.affectedOne(ctx, op, res)
}

func (r *GormAccountRepository) affectedOne(ctx context.Context, op string, res *gorm.DB) error {
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "account", op, "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "account", op, "not_found")
		return ErrAccountNotFound
	}
	observability.RecordRepositoryOperation(ctx, "account", op, "success")
	return nil
}
