package service

//go:generate mockgen -source=interfaces.go -destination=gomock/mocks.go -package=gomock

import (
	"context"

	"github.com/sandeepkv93/authplus-license-service/internal/domain"
)

type AccountDirectoryService interface {
	Register(ctx context.Context, username, password, licenseKey string) (*domain.Account, error)
	Fetch(ctx context.Context, username string) (*domain.Account, error)
	Delete(ctx context.Context, username string) error
	SetPassword(ctx context.Context, username, newPassword string) error
	SetNote(ctx context.Context, username, note string) error
	ResetHardwareID(ctx context.Context, username string) error
}

type LicenseIssuer interface {
	Generate(ctx context.Context) (*domain.License, error)
}

type LoginAuthorizer interface {
	Login(ctx context.Context, in LoginInput) (Outcome, error)
}

type StatsReader interface {
	Snapshot(ctx context.Context) (Stats, error)
}

var (
	_ AccountDirectoryService = (*AccountDirectory)(nil)
	_ LicenseIssuer           = (*LicenseLedger)(nil)
	_ LoginAuthorizer         = (*AuthorizationEngine)(nil)
	_ StatsReader             = (*StatsService)(nil)
	_ LicenseExporter         = (*MinIOLicenseExporter)(nil)
)
