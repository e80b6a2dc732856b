package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DonationRepository loads donations and persists computed deductions.
type DonationRepository interface {
	Get(ctx context.Context, name string) (*Donation, error)
	SaveDeductions(ctx context.Context, name string, payments []PaymentDetail, breakeven []DeductionBreakeven) error
}

// DeductionRepository exposes the lookups the deduction calculator needs.
type DeductionRepository interface {
	Rules(ctx context.Context, fundClass, company string) ([]DeductionRule, error)
	DonorStatus(ctx context.Context, donor string) (string, error)
	FundClassDefaults(ctx context.Context, fundClass, company string) (*FundClassDefaults, error)
	CompanyCurrency(ctx context.Context, company string) (string, error)
}

// ExchangeRateRepository reads stored currency exchange rows.
type ExchangeRateRepository interface {
	StoredRate(ctx context.Context, from, to string, on time.Time) (float64, error)
	SaveRate(ctx context.Context, from, to string, on time.Time, rate float64) error
}

// AnalyticsRepository computes the lapsed-donor aggregates.
type AnalyticsRepository interface {
	CountActiveDonors(ctx context.Context) (int64, error)
	CountLapsedDonors(ctx context.Context, windowDays int) (int64, error)
	ReEngagementRate(ctx context.Context, windowDays int) (float64, error)
	ListLapsedDonors(ctx context.Context, windowDays int) ([]LapsedDonor, error)
}

// CertificateRepository persists tax exemption certificates.
type CertificateRepository interface {
	Create(ctx context.Context, cert *Certificate) error
	GetByName(ctx context.Context, name string) (*Certificate, error)
	GetByNumber(ctx context.Context, number string) (*Certificate, error)
}

// EmailJobRepository is the persistent queue of campaign emails.
type EmailJobRepository interface {
	Enqueue(ctx context.Context, job EmailJob) (uuid.UUID, error)
	// Claim returns nil, nil when no job is due. Jobs RUNNING for longer than
	// staleAfter are claimed again.
	Claim(ctx context.Context, staleAfter time.Duration) (*EmailJob, error)
	Complete(ctx context.Context, id uuid.UUID, status, errMsg string) error
	// Requeue makes the job claimable again once delay has passed.
	Requeue(ctx context.Context, id uuid.UUID, errMsg string, delay time.Duration) error
}
