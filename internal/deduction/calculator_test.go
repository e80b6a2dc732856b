package deduction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorcrm/internal/domain"
)

type fakeRepo struct {
	rules     map[string][]domain.DeductionRule
	statuses  map[string]string
	currency  string
	ruleCalls int
	defaults  *domain.FundClassDefaults
}

func (f *fakeRepo) Rules(_ context.Context, fundClass, company string) ([]domain.DeductionRule, error) {
	f.ruleCalls++
	return f.rules[fundClass+"|"+company], nil
}

func (f *fakeRepo) DonorStatus(_ context.Context, donor string) (string, error) {
	status, ok := f.statuses[donor]
	if !ok {
		return "", domain.NotFound(domain.DoctypeDonor, donor)
	}
	return status, nil
}

func (f *fakeRepo) FundClassDefaults(_ context.Context, fundClass, company string) (*domain.FundClassDefaults, error) {
	if f.defaults == nil || f.defaults.FundClass != fundClass {
		return nil, domain.NotFound(domain.DoctypeFundClass, fundClass)
	}
	return f.defaults, nil
}

func (f *fakeRepo) CompanyCurrency(context.Context, string) (string, error) {
	return f.currency, nil
}

type fixedRate struct {
	rate  float64
	calls int
	err   error
}

func (r *fixedRate) Rate(context.Context, string, string, time.Time) (float64, error) {
	r.calls++
	return r.rate, r.err
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		currency: "PKR",
		rules: map[string][]domain.DeductionRule{
			"General|Alkhidmat Foundation": {
				{FundClass: "General", Company: "Alkhidmat Foundation", Account: "Admin Expense", Percentage: 5},
			},
			"Health|Alkhidmat Foundation": {
				{FundClass: "Health", Company: "Alkhidmat Foundation", Account: "Admin Expense", Percentage: 2.5},
				{FundClass: "Health", Company: "Alkhidmat Foundation", Account: "Fundraising", Percentage: 1.5, CostCenter: "Main"},
			},
		},
		statuses: map[string]string{
			"DONOR-2026-00001": domain.DonorStatusActive,
			"DONOR-2026-00002": domain.DonorStatusBlocked,
		},
	}
}

func input(rows ...PaymentRow) Input {
	return Input{
		Company:     "Alkhidmat Foundation",
		Currency:    "PKR",
		PostingDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Rows:        rows,
	}
}

func TestCalculateSingleRule(t *testing.T) {
	calc := NewCalculator(newRepo(), nil)
	res, err := calc.Calculate(context.Background(), input(PaymentRow{
		Idx: 1, Donor: "DONOR-2026-00001", FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 1000,
	}))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Breakeven, 1)

	assert.Equal(t, 50.0, res.Breakeven[0].Amount)
	assert.Equal(t, 1, res.Breakeven[0].PaymentIdx)
	assert.Equal(t, "Admin Expense", res.Breakeven[0].Account)
	assert.Equal(t, 50.0, res.Rows[0].DeductionAmount)
	assert.Equal(t, 950.0, res.Rows[0].NetAmount)
	assert.Equal(t, 950.0, res.Rows[0].OutstandingAmount)
	assert.Equal(t, 1.0, res.ExchangeRate)
	assert.Equal(t, 950.0, res.Rows[0].BaseNetAmount)
}

func TestCalculateSkipsDeduction(t *testing.T) {
	tests := []struct {
		name         string
		intention    string
		contribution string
		outstanding  float64
	}{
		{name: "zakat", intention: "Zakat", outstanding: 1000},
		{name: "zakat case insensitive", intention: "zAKAT", outstanding: 1000},
		{name: "missing intention", intention: "", outstanding: 1000},
		{name: "pledge", intention: "Sadaqah", contribution: domain.ContributionPledge, outstanding: 1000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newRepo()
			calc := NewCalculator(repo, nil)
			in := input(PaymentRow{Idx: 1, FundClass: "General", IntentionID: tc.intention, DonationAmount: 1000})
			in.ContributionType = tc.contribution

			res, err := calc.Calculate(context.Background(), in)
			require.NoError(t, err)
			assert.Empty(t, res.Breakeven)
			assert.Equal(t, 0.0, res.Rows[0].DeductionAmount)
			assert.Equal(t, 1000.0, res.Rows[0].NetAmount)
			assert.Equal(t, tc.outstanding, res.Rows[0].OutstandingAmount)
			assert.Equal(t, 0, repo.ruleCalls)
		})
	}
}

func TestCalculateBaseAmountsScaleByRate(t *testing.T) {
	rates := &fixedRate{rate: 280}
	calc := NewCalculator(newRepo(), rates)
	in := input(
		PaymentRow{Idx: 1, FundClass: "Health", IntentionID: "Sadaqah", DonationAmount: 200},
		PaymentRow{Idx: 2, FundClass: "Health", IntentionID: "Sadaqah", DonationAmount: 100},
	)
	in.Currency = "USD"

	res, err := calc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, rates.calls)
	assert.Equal(t, "PKR", res.CompanyCurrency)

	first := res.Rows[0]
	assert.Equal(t, 8.0, first.DeductionAmount)
	assert.Equal(t, 192.0, first.NetAmount)
	assert.Equal(t, 56000.0, first.BaseDonationAmount)
	assert.Equal(t, 2240.0, first.BaseDeductionAmount)
	assert.Equal(t, 53760.0, first.BaseNetAmount)

	require.Len(t, res.Breakeven, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{res.Breakeven[0].Idx, res.Breakeven[1].Idx, res.Breakeven[2].Idx, res.Breakeven[3].Idx})
	assert.Equal(t, 5.0, res.Breakeven[0].Amount)
	assert.Equal(t, 1400.0, res.Breakeven[0].BaseAmount)
	assert.Equal(t, "Main", res.Breakeven[1].CostCenter)

	assert.Equal(t, 300.0, res.Totals.DonationAmount)
	assert.Equal(t, 12.0, res.Totals.DeductionAmount)
	assert.Equal(t, 288.0, res.Totals.NetAmount)
	assert.Equal(t, 84000.0, res.Totals.BaseDonationAmount)
}

func TestCalculateCachesRulesPerFundClass(t *testing.T) {
	repo := newRepo()
	calc := NewCalculator(repo, nil)
	_, err := calc.Calculate(context.Background(), input(
		PaymentRow{Idx: 1, FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 10},
		PaymentRow{Idx: 2, FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 20},
		PaymentRow{Idx: 3, FundClass: "Health", IntentionID: "Sadaqah", DonationAmount: 30},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.ruleCalls)
}

func TestCalculateRejectsBlockedDonor(t *testing.T) {
	calc := NewCalculator(newRepo(), nil)
	_, err := calc.Calculate(context.Background(), input(
		PaymentRow{Idx: 1, Donor: "DONOR-2026-00001", FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 10},
		PaymentRow{Idx: 2, Donor: "DONOR-2026-00002", FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 10},
	))
	require.ErrorIs(t, err, domain.ErrBlockedDonor)
	var blocked *domain.BlockedDonorError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 2, blocked.Row)
	assert.Equal(t, "DONOR-2026-00002", blocked.Donor)
}

func TestCalculateValidation(t *testing.T) {
	calc := NewCalculator(newRepo(), nil)
	ctx := context.Background()

	_, err := calc.Calculate(ctx, input())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = calc.Calculate(ctx, input(PaymentRow{Idx: 1, FundClass: "General", DonationAmount: 0}))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = calc.Calculate(ctx, input(PaymentRow{Idx: 1, DonationAmount: 10}))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = calc.Calculate(ctx, input(PaymentRow{Idx: 1, Donor: "DONOR-404", FundClass: "General", DonationAmount: 10}))
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := input(PaymentRow{Idx: 1, FundClass: "General", DonationAmount: 10})
	bad.Currency = "RUPEES"
	_, err = calc.Calculate(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCalculateRateFailure(t *testing.T) {
	calc := NewCalculator(newRepo(), &fixedRate{err: errors.New("offline")})
	in := input(PaymentRow{Idx: 1, FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 10})
	in.Currency = "USD"
	_, err := calc.Calculate(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 33.33, Round2(100.0/3))
}
