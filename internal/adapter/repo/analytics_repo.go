package repo

import (
	"context"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// AnalyticsRepositoryPG implements AnalyticsRepository using PostgreSQL.
type AnalyticsRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(sql infra.SQLExecutor) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{sql: sql}
}

func (r *AnalyticsRepositoryPG) CountActiveDonors(ctx context.Context) (int64, error) {
	var n int64
	err := r.sql.QueryRow(ctx, sqlinline.QCountActiveDonors).Scan(&n)
	return n, err
}

func (r *AnalyticsRepositoryPG) CountLapsedDonors(ctx context.Context, windowDays int) (int64, error) {
	var n int64
	err := r.sql.QueryRow(ctx, sqlinline.QCountLapsedDonors, windowDays).Scan(&n)
	return n, err
}

func (r *AnalyticsRepositoryPG) ReEngagementRate(ctx context.Context, windowDays int) (float64, error) {
	var rate float64
	err := r.sql.QueryRow(ctx, sqlinline.QReEngagementRate, windowDays).Scan(&rate)
	return rate, err
}

// ListLapsedDonors returns lapsed donors, longest inactive first.
func (r *AnalyticsRepositoryPG) ListLapsedDonors(ctx context.Context, windowDays int) ([]domain.LapsedDonor, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListLapsedDonors, windowDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.LapsedDonor{}
	for rows.Next() {
		var d domain.LapsedDonor
		if err := rows.Scan(&d.DonorID, &d.DonorName, &d.LastDonationDate, &d.TotalDonations); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.AnalyticsRepository = (*AnalyticsRepositoryPG)(nil)
