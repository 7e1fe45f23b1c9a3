package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Stats struct {
	UserCount    int64 `json:"user_count"`
	LicenseCount int64 `json:"license_count"`
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type StatsService struct {
	accounts counter
	licenses counter
}

func NewStatsService(accounts *AccountDirectory, licenses *LicenseLedger) *StatsService {
	return &StatsService{accounts: accounts, licenses: licenses}
}

// Snapshot counts accounts and unconsumed licenses concurrently.
func (s *StatsService) Snapshot(ctx context.Context) (Stats, error) {
	var out Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.UserCount, err = s.accounts.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.LicenseCount, err = s.licenses.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}
