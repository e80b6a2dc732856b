package deduction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
)

type memDonations struct {
	donation *domain.Donation
	saves    int
}

func (m *memDonations) Get(_ context.Context, name string) (*domain.Donation, error) {
	if m.donation == nil || m.donation.Name != name {
		return nil, domain.NotFound(domain.DoctypeDonation, name)
	}
	copied := *m.donation
	copied.Payments = append([]domain.PaymentDetail(nil), m.donation.Payments...)
	copied.Breakeven = append([]domain.DeductionBreakeven(nil), m.donation.Breakeven...)
	return &copied, nil
}

func (m *memDonations) SaveDeductions(_ context.Context, _ string, payments []domain.PaymentDetail, breakeven []domain.DeductionBreakeven) error {
	m.saves++
	byIdx := map[int]domain.PaymentDetail{}
	for _, p := range payments {
		byIdx[p.Idx] = p
	}
	for i, p := range m.donation.Payments {
		if updated, ok := byIdx[p.Idx]; ok {
			updated.Name = p.Name
			m.donation.Payments[i] = updated
		}
	}
	m.donation.Breakeven = append([]domain.DeductionBreakeven(nil), breakeven...)
	return nil
}

func TestApplyIsIdempotent(t *testing.T) {
	store := &memDonations{donation: &domain.Donation{
		Name:        "DON-0001",
		Company:     "Alkhidmat Foundation",
		Currency:    "PKR",
		PostingDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Payments: []domain.PaymentDetail{
			{Name: "row-1", Idx: 1, FundClass: "General", IntentionID: "Sadaqah", DonationAmount: 1000},
			{Name: "row-2", Idx: 2, FundClass: "Health", IntentionID: "Zakat", DonationAmount: 400},
		},
	}}
	repo := newRepo()
	svc := NewService(NewCalculator(repo, nil), store, repo)

	first, err := svc.Apply(context.Background(), "DON-0001")
	require.NoError(t, err)
	afterFirst, _ := store.Get(context.Background(), "DON-0001")

	second, err := svc.Apply(context.Background(), "DON-0001")
	require.NoError(t, err)
	afterSecond, _ := store.Get(context.Background(), "DON-0001")

	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst.Breakeven, afterSecond.Breakeven)
	assert.Equal(t, afterFirst.Payments, afterSecond.Payments)
	assert.Len(t, afterSecond.Breakeven, 1)
	assert.Equal(t, 950.0, afterSecond.Payments[0].NetAmount)
	assert.Equal(t, 400.0, afterSecond.Payments[1].NetAmount)
	assert.Equal(t, 2, store.saves)
}

func TestApplyMissingDonation(t *testing.T) {
	repo := newRepo()
	svc := NewService(NewCalculator(repo, nil), &memDonations{}, repo)
	_, err := svc.Apply(context.Background(), "DON-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFundClassDefaults(t *testing.T) {
	repo := newRepo()
	repo.defaults = &domain.FundClassDefaults{FundClass: "General", Company: "Alkhidmat Foundation", EquityAccount: "Equity"}
	svc := NewService(NewCalculator(repo, nil), &memDonations{}, repo)

	got, err := svc.FundClassDefaults(context.Background(), "General", "Alkhidmat Foundation")
	require.NoError(t, err)
	assert.Equal(t, "Equity", got.EquityAccount)

	_, err = svc.FundClassDefaults(context.Background(), "", "Alkhidmat Foundation")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type memRates struct {
	stored map[string]float64
	saved  int
}

func (m *memRates) StoredRate(_ context.Context, from, to string, _ time.Time) (float64, error) {
	if r, ok := m.stored[from+to]; ok {
		return r, nil
	}
	return 0, domain.NotFound(domain.DoctypeCurrencyRate, from+"-"+to)
}

func (m *memRates) SaveRate(_ context.Context, from, to string, _ time.Time, rate float64) error {
	m.saved++
	m.stored[from+to] = rate
	return nil
}

func TestExchangeRatesPrefersStoredRows(t *testing.T) {
	store := &memRates{stored: map[string]float64{"USDPKR": 281}}
	provider := &fixedRate{rate: 999}
	rates := NewExchangeRates(store, provider, infra.NopLogger())

	rate, err := rates.Rate(context.Background(), "usd", "pkr", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 281.0, rate)
	assert.Equal(t, 0, provider.calls)

	rate, err = rates.Rate(context.Background(), "EUR", "PKR", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 999.0, rate)
	assert.Equal(t, 1, store.saved)

	rate, err = rates.Rate(context.Background(), "PKR", "PKR", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestExchangeRatesWithoutProvider(t *testing.T) {
	rates := NewExchangeRates(&memRates{stored: map[string]float64{}}, nil, infra.NopLogger())
	_, err := rates.Rate(context.Background(), "EUR", "PKR", time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
}
