package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/authplus-license-service/internal/domain"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/repository"
)

const (
	licenseAlphabet          = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxGenerateAttempts      = 5
	maxBatchSize             = 1000
	batchGenerateConcurrency = 8
)

var ErrBatchSize = fmt.Errorf("batch size must be between 1 and %d", maxBatchSize)

type LicenseLedger struct {
	licenses repository.LicenseRepository
	entropy  io.Reader
	now      func() time.Time
}

func NewLicenseLedger(licenses repository.LicenseRepository) *LicenseLedger {
	return &LicenseLedger{licenses: licenses, entropy: rand.Reader, now: time.Now}
}

// Generate issues a new single-use license. A primary key collision is
// retried with a fresh key.
func (l *LicenseLedger) Generate(ctx context.Context) (*domain.License, error) {
	ctx, span := observability.StartSpan(ctx, "license.generate")
	defer span.End()

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		key, err := l.newKey()
		if err != nil {
			observability.RecordLicenseOperation(ctx, "generate", "error")
			return nil, err
		}
		license := &domain.License{Key: key, DateCreated: domain.Today(l.now())}
		err = l.licenses.Create(ctx, license)
		if errors.Is(err, repository.ErrLicenseExists) {
			observability.RecordLicenseOperation(ctx, "generate", "collision")
			continue
		}
		if err != nil {
			observability.RecordLicenseOperation(ctx, "generate", "error")
			return nil, fmt.Errorf("store license: %w", err)
		}
		observability.RecordLicenseOperation(ctx, "generate", "success")
		return license, nil
	}
	observability.RecordLicenseOperation(ctx, "generate", "exhausted")
	return nil, fmt.Errorf("generate license: %d consecutive key collisions", maxGenerateAttempts)
}

// GenerateBatch issues n licenses concurrently. On error the licenses already
// stored stay valid and are returned alongside the error.
func (l *LicenseLedger) GenerateBatch(ctx context.Context, n int) ([]domain.License, error) {
	if n < 1 || n > maxBatchSize {
		return nil, ErrBatchSize
	}
	out := make([]*domain.License, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchGenerateConcurrency)
	for i := range n {
		g.Go(func() error {
			lic, err := l.Generate(gctx)
			if err != nil {
				return err
			}
			out[i] = lic
			return nil
		})
	}
	err := g.Wait()

	issued := make([]domain.License, 0, n)
	for _, lic := range out {
		if lic != nil {
			issued = append(issued, *lic)
		}
	}
	return issued, err
}

// Consume deletes the license if present. Input is uppercased first so keys
// are accepted regardless of case.
func (l *LicenseLedger) Consume(ctx context.Context, key string) (bool, error) {
	return l.ConsumeWith(ctx, l.licenses, key)
}

// ConsumeWith is Consume against a caller-supplied repository, typically one
// bound to an open transaction.
func (l *LicenseLedger) ConsumeWith(ctx context.Context, licenses repository.LicenseRepository, key string) (bool, error) {
	if key == "" {
		observability.RecordLicenseOperation(ctx, "consume", "invalid")
		return false, nil
	}
	ok, err := licenses.DeleteByKey(ctx, strings.ToUpper(key))
	switch {
	case err != nil:
		observability.RecordLicenseOperation(ctx, "consume", "error")
		return false, fmt.Errorf("consume license: %w", err)
	case !ok:
		observability.RecordLicenseOperation(ctx, "consume", "invalid")
	default:
		observability.RecordLicenseOperation(ctx, "consume", "success")
	}
	return ok, nil
}

func (l *LicenseLedger) Count(ctx context.Context) (int64, error) {
	return l.licenses.Count(ctx)
}

func (l *LicenseLedger) List(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.License], error) {
	return l.licenses.ListPaged(ctx, req)
}

// newKey draws LicenseKeyLength symbols uniformly from licenseAlphabet using
// rejection sampling over random bytes.
func (l *LicenseLedger) newKey() (string, error) {
	const limit = 256 - 256%len(licenseAlphabet)
	var (
		sb  strings.Builder
		buf [32]byte
	)
	sb.Grow(domain.LicenseKeyLength)
	for sb.Len() < domain.LicenseKeyLength {
		if _, err := io.ReadFull(l.entropy, buf[:]); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			sb.WriteByte(licenseAlphabet[int(b)%len(licenseAlphabet)])
			if sb.Len() == domain.LicenseKeyLength {
				break
			}
		}
	}
	return sb.String(), nil
}
