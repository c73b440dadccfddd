package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
)

// StatsService derives the dashboard counters straight from the stores on
// every call.
type StatsService struct {
	users    UserStore
	fundings FundingStore
	requests RequestStore
}

func NewStatsService(users UserStore, fundings FundingStore, requests RequestStore) *StatsService {
	return &StatsService{users: users, fundings: fundings, requests: requests}
}

func (s *StatsService) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.users.CountByRole(gctx, models.RoleDonor)
		if err != nil {
			return wrap(ErrAggregation, "count donors", err)
		}
		stats.TotalDonors = n
		return nil
	})
	g.Go(func() error {
		total, err := s.fundings.SumAmount(gctx)
		if err != nil {
			return wrap(ErrAggregation, "sum funding", err)
		}
		stats.TotalFunding = total
		return nil
	})
	g.Go(func() error {
		n, err := s.requests.Count(gctx)
		if err != nil {
			return wrap(ErrAggregation, "count donation requests", err)
		}
		stats.TotalDonationRequests = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
