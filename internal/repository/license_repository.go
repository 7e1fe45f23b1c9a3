package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
)

var ErrLicenseExists = errors.New("license already exists")

type LicenseRepository interface {
	Create(ctx context.Context, license *domain.License) error
	// DeleteByKey removes the exact key and reports whether a row was removed.
	DeleteByKey(ctx context.Context, key string) (bool, error)
	Count(ctx context.Context) (int64, error)
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.License], error)
}

type GormLicenseRepository struct {
	db   *gorm.DB
	opts StoreOptions
}

func NewLicenseRepository(db *gorm.DB, opts StoreOptions) LicenseRepository {
	return &GormLicenseRepository{db: db, opts: opts}
}

func (r *GormLicenseRepository) Create(ctx context.Context, license *domain.License) error {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	if err := r.db.WithContext(ctx).Create(license).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "license", "create", "duplicate")
			return ErrLicenseExists
		}
		observability.RecordRepositoryOperation(ctx, "license", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "license", "create", "success")
	return nil
}

func (r *GormLicenseRepository) DeleteByKey(ctx context.Context, key string) (bool, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	res := r.db.WithContext(ctx).Where("license_key = ?", key).Delete(&domain.License{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "license", "delete_by_key", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "license", "delete_by_key", "not_found")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "license", "delete_by_key", "success")
	return true, nil
}

func (r *GormLicenseRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.License{}).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "license", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "license", "count", "success")
	return n, nil
}

func (r *GormLicenseRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.License], error) {
	ctx, cancel := r.opts.bound(ctx)
	defer cancel()
	normalized := normalizePageRequest(req)
	result := PageResult[domain.License]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.License{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "license", "list_paged", "error")
		return PageResult[domain.License]{}, err
	}
	if err := db.Order("created_at desc, license_key").Offset(normalized.offset()).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "license", "list_paged", "error")
		return PageResult[domain.License]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(ctx, "license", "list_paged", "success")
	return result, nil
}
