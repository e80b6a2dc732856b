// Package lapsed builds the lapsed-donor analytics dashboard.
package lapsed

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"donorcrm/internal/domain"
)

type Service struct {
	repo        domain.AnalyticsRepository
	defaultDays int
}

// NewService returns a dashboard service using defaultDays when a request
// does not name a window.
func NewService(repo domain.AnalyticsRepository, defaultDays int) *Service {
	return &Service{repo: repo, defaultDays: defaultDays}
}

// Dashboard runs the four aggregate queries concurrently.
func (s *Service) Dashboard(ctx context.Context, days int) (domain.LapsedDashboard, error) {
	if days <= 0 {
		days = s.defaultDays
	}
	out := domain.LapsedDashboard{WindowDays: days}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalActiveDonors, err = s.repo.CountActiveDonors(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalLapsedDonors, err = s.repo.CountLapsedDonors(gctx, days)
		return err
	})
	g.Go(func() error {
		rate, err := s.repo.ReEngagementRate(gctx, days)
		out.ReEngagementRate = math.Round(rate*100) / 100
		return err
	})
	g.Go(func() (err error) {
		out.LapsedDonorsList, err = s.repo.ListLapsedDonors(gctx, days)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.LapsedDashboard{}, err
	}
	if out.LapsedDonorsList == nil {
		out.LapsedDonorsList = []domain.LapsedDonor{}
	}
	return out, nil
}
