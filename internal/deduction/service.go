package deduction

import (
	"context"
	"fmt"
	"strings"

	"donorcrm/internal/domain"
)

// Service exposes the calculator to handlers and persists results.
type Service struct {
	calc      *Calculator
	donations domain.DonationRepository
	repo      domain.DeductionRepository
}

func NewService(calc *Calculator, donations domain.DonationRepository, repo domain.DeductionRepository) *Service {
	return &Service{calc: calc, donations: donations, repo: repo}
}

// Preview calculates without storing anything.
func (s *Service) Preview(ctx context.Context, in Input) (Result, error) {
	return s.calc.Calculate(ctx, in)
}

// Apply recalculates a stored donation and replaces its breakeven rows and
// payment amounts. Running it twice leaves the same rows.
func (s *Service) Apply(ctx context.Context, donationName string) (Result, error) {
	donation, err := s.donations.Get(ctx, donationName)
	if err != nil {
		return Result{}, err
	}
	if donation.DocStatus == domain.DocStatusCancelled {
		return Result{}, domain.Invalid("docstatus", "donation %s is cancelled", donationName)
	}

	res, err := s.calc.Calculate(ctx, InputFromDonation(donation))
	if err != nil {
		return Result{}, err
	}
	if err := s.donations.SaveDeductions(ctx, donation.Name, res.Rows, res.Breakeven); err != nil {
		return Result{}, fmt.Errorf("save deductions: %w", err)
	}
	return res, nil
}

// FundClassDefaults returns the default accounts of a fund class.
func (s *Service) FundClassDefaults(ctx context.Context, fundClass, company string) (*domain.FundClassDefaults, error) {
	fundClass = strings.TrimSpace(fundClass)
	if fundClass == "" {
		return nil, domain.Invalid("fund_class", "fund class is required")
	}
	if strings.TrimSpace(company) == "" {
		return nil, domain.Invalid("company", "company is required")
	}
	return s.repo.FundClassDefaults(ctx, fundClass, company)
}

// InputFromDonation maps a stored donation onto calculator input.
func InputFromDonation(d *domain.Donation) Input {
	in := Input{
		Company:          d.Company,
		Currency:         d.Currency,
		PostingDate:      d.PostingDate,
		ContributionType: d.ContributionType,
		Rows:             make([]PaymentRow, 0, len(d.Payments)),
	}
	for _, p := range d.Payments {
		in.Rows = append(in.Rows, PaymentRow{
			Idx:            p.Idx,
			Donor:          p.Donor,
			FundClass:      p.FundClass,
			IntentionID:    p.IntentionID,
			ModeOfPayment:  p.ModeOfPayment,
			DonationAmount: p.DonationAmount,
		})
	}
	return in
}
