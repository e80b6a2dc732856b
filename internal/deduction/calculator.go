// Package deduction apportions donation payments across the deduction
// accounts configured for each fund class and converts the amounts into the
// company currency.
package deduction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"donorcrm/internal/domain"
)

type (
	Rule      = domain.DeductionRule
	Breakeven = domain.DeductionBreakeven
	RowResult = domain.PaymentDetail
)

// RateSource converts between currencies on a given date.
type RateSource interface {
	Rate(ctx context.Context, from, to string, on time.Time) (float64, error)
}

// PaymentRow is one payment line to apportion. Empty ContributionType and
// Company inherit the values of the Input.
type PaymentRow struct {
	Idx              int     `json:"idx"`
	Donor            string  `json:"donor"`
	FundClass        string  `json:"fund_class"`
	IntentionID      string  `json:"intention_id"`
	ContributionType string  `json:"contribution_type,omitempty"`
	Company          string  `json:"company,omitempty"`
	ModeOfPayment    string  `json:"mode_of_payment,omitempty"`
	DonationAmount   float64 `json:"donation_amount"`
}

// Input is a donation header with its payment rows.
type Input struct {
	Company          string       `json:"company"`
	Currency         string       `json:"currency"`
	PostingDate      time.Time    `json:"posting_date"`
	ContributionType string       `json:"contribution_type"`
	Rows             []PaymentRow `json:"payment_detail"`
}

// Totals sums the row amounts.
type Totals struct {
	DonationAmount        float64 `json:"donation_amount"`
	DeductionAmount       float64 `json:"deduction_amount"`
	NetAmount             float64 `json:"net_amount"`
	OutstandingAmount     float64 `json:"outstanding_amount"`
	BaseDonationAmount    float64 `json:"base_donation_amount"`
	BaseDeductionAmount   float64 `json:"base_deduction_amount"`
	BaseNetAmount         float64 `json:"base_net_amount"`
	BaseOutstandingAmount float64 `json:"base_outstanding_amount"`
}

// Result is the outcome of a calculation.
type Result struct {
	Currency        string      `json:"currency"`
	CompanyCurrency string      `json:"company_currency"`
	ExchangeRate    float64     `json:"exchange_rate"`
	Rows            []RowResult `json:"payment_detail"`
	Breakeven       []Breakeven `json:"deduction_breakeven"`
	Totals          Totals      `json:"totals"`
}

// Calculator computes deductions from stored rules.
type Calculator struct {
	repo  domain.DeductionRepository
	rates RateSource
	now   func() time.Time
}

func NewCalculator(repo domain.DeductionRepository, rates RateSource) *Calculator {
	return &Calculator{repo: repo, rates: rates, now: time.Now}
}

// Calculate apportions every row of in. Rules are read once per
// (fund class, company) and the exchange rate once per call.
func (c *Calculator) Calculate(ctx context.Context, in Input) (Result, error) {
	if len(in.Rows) == 0 {
		return Result{}, domain.Invalid("payment_detail", "at least one payment row is required")
	}
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return Result{}, domain.Invalid("company", "company is required")
	}

	companyCurrency, err := c.repo.CompanyCurrency(ctx, company)
	if err != nil {
		return Result{}, fmt.Errorf("company currency: %w", err)
	}
	txCurrency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if txCurrency == "" {
		txCurrency = companyCurrency
	}
	if txCurrency == "" {
		return Result{}, domain.Invalid("currency", "currency is required")
	}
	if _, err := currency.ParseISO(txCurrency); err != nil {
		return Result{}, domain.Invalid("currency", "%q is not an ISO 4217 currency code", in.Currency)
	}
	if companyCurrency == "" {
		companyCurrency = txCurrency
	}

	postingDate := in.PostingDate
	if postingDate.IsZero() {
		postingDate = c.now()
	}

	rate := 1.0
	if txCurrency != companyCurrency {
		if c.rates == nil {
			return Result{}, fmt.Errorf("no exchange rate source for %s to %s", txCurrency, companyCurrency)
		}
		rate, err = c.rates.Rate(ctx, txCurrency, companyCurrency, postingDate)
		if err != nil {
			return Result{}, fmt.Errorf("exchange rate %s to %s: %w", txCurrency, companyCurrency, err)
		}
		if rate <= 0 {
			return Result{}, fmt.Errorf("exchange rate %s to %s is not positive", txCurrency, companyCurrency)
		}
	}

	res := Result{
		Currency:        txCurrency,
		CompanyCurrency: companyCurrency,
		ExchangeRate:    rate,
		Rows:            make([]RowResult, 0, len(in.Rows)),
		Breakeven:       []Breakeven{},
	}
	rules := map[string][]Rule{}
	donorStatus := map[string]string{}

	for i, row := range in.Rows {
		idx := row.Idx
		if idx == 0 {
			idx = i + 1
		}
		if err := validateRow(idx, row); err != nil {
			return Result{}, err
		}

		if donor := strings.TrimSpace(row.Donor); donor != "" {
			status, ok := donorStatus[donor]
			if !ok {
				status, err = c.repo.DonorStatus(ctx, donor)
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return Result{}, domain.Invalid("payment_detail", "row %d: donor %s does not exist", idx, donor)
					}
					return Result{}, fmt.Errorf("row %d: donor status: %w", idx, err)
				}
				donorStatus[donor] = status
			}
			if status == domain.DonorStatusBlocked {
				return Result{}, &domain.BlockedDonorError{Row: idx, Donor: donor}
			}
		}

		rowCompany := firstNonEmpty(row.Company, company)
		contribution := firstNonEmpty(row.ContributionType, in.ContributionType, domain.ContributionDonation)
		pledge := strings.EqualFold(contribution, domain.ContributionPledge)

		var deduction float64
		if !SkipsDeduction(row.IntentionID, contribution) {
			key := row.FundClass + "\x00" + rowCompany
			fundRules, ok := rules[key]
			if !ok {
				fundRules, err = c.repo.Rules(ctx, row.FundClass, rowCompany)
				if err != nil {
					return Result{}, fmt.Errorf("row %d: deduction rules: %w", idx, err)
				}
				rules[key] = fundRules
			}
			for _, rule := range fundRules {
				amount := Round2(row.DonationAmount * rule.Percentage / 100)
				deduction += amount
				res.Breakeven = append(res.Breakeven, Breakeven{
					Idx:         len(res.Breakeven) + 1,
					PaymentIdx:  idx,
					Donor:       row.Donor,
					FundClass:   row.FundClass,
					IntentionID: row.IntentionID,
					Company:     rowCompany,
					Account:     rule.Account,
					Percentage:  rule.Percentage,
					MinPercent:  rule.MinPercent,
					MaxPercent:  rule.MaxPercent,
					Amount:      amount,
					BaseAmount:  Round2(amount * rate),
					CostCenter:  rule.CostCenter,
					Project:     rule.Project,
				})
			}
		}

		donation := Round2(row.DonationAmount)
		deduction = Round2(deduction)
		net := Round2(donation - deduction)
		outstanding := net
		if pledge {
			outstanding = donation
		}

		out := RowResult{
			Idx:                   idx,
			Donor:                 row.Donor,
			FundClass:             row.FundClass,
			IntentionID:           row.IntentionID,
			ModeOfPayment:         row.ModeOfPayment,
			DonationAmount:        donation,
			DeductionAmount:       deduction,
			NetAmount:             net,
			OutstandingAmount:     outstanding,
			BaseDonationAmount:    Round2(donation * rate),
			BaseDeductionAmount:   Round2(deduction * rate),
			BaseNetAmount:         Round2(net * rate),
			BaseOutstandingAmount: Round2(outstanding * rate),
		}
		res.Rows = append(res.Rows, out)
		res.Totals.add(out)
	}
	res.Totals.round()
	return res, nil
}

func validateRow(idx int, row PaymentRow) error {
	if strings.TrimSpace(row.FundClass) == "" {
		return domain.Invalid("payment_detail", "row %d: fund class is required", idx)
	}
	if row.DonationAmount <= 0 || math.IsNaN(row.DonationAmount) || math.IsInf(row.DonationAmount, 0) {
		return domain.Invalid("payment_detail", "row %d: donation amount must be positive", idx)
	}
	return nil
}

// SkipsDeduction reports whether a payment row carries no deduction: Zakat or
// missing intentions, and pledges.
func SkipsDeduction(intention, contributionType string) bool {
	intention = strings.TrimSpace(intention)
	if intention == "" || strings.EqualFold(intention, domain.IntentionZakat) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(contributionType), domain.ContributionPledge)
}

// Round2 rounds to two decimals, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (t *Totals) add(r RowResult) {
	t.DonationAmount += r.DonationAmount
	t.DeductionAmount += r.DeductionAmount
	t.NetAmount += r.NetAmount
	t.OutstandingAmount += r.OutstandingAmount
	t.BaseDonationAmount += r.BaseDonationAmount
	t.BaseDeductionAmount += r.BaseDeductionAmount
	t.BaseNetAmount += r.BaseNetAmount
	t.BaseOutstandingAmount += r.BaseOutstandingAmount
}

func (t *Totals) round() {
	t.DonationAmount = Round2(t.DonationAmount)
	t.DeductionAmount = Round2(t.DeductionAmount)
	t.NetAmount = Round2(t.NetAmount)
	t.OutstandingAmount = Round2(t.OutstandingAmount)
	t.BaseDonationAmount = Round2(t.BaseDonationAmount)
	t.BaseDeductionAmount = Round2(t.BaseDeductionAmount)
	t.BaseNetAmount = Round2(t.BaseNetAmount)
	t.BaseOutstandingAmount = Round2(t.BaseOutstandingAmount)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
