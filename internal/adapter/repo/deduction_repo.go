package repo

import (
	"context"
	"strings"
	"time"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// DeductionRepositoryPG serves the lookups of the deduction calculator.
type DeductionRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewDeductionRepository(sql infra.SQLExecutor) *DeductionRepositoryPG {
	return &DeductionRepositoryPG{sql: sql}
}

func (r *DeductionRepositoryPG) Rules(ctx context.Context, fundClass, company string) ([]domain.DeductionRule, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDeductionRules, fundClass, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.DeductionRule
	for rows.Next() {
		var rule domain.DeductionRule
		if err := rows.Scan(
			&rule.FundClass,
			&rule.Company,
			&rule.Account,
			&rule.Percentage,
			&rule.MinPercent,
			&rule.MaxPercent,
			&rule.CostCenter,
			&rule.Project,
		); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *DeductionRepositoryPG) DonorStatus(ctx context.Context, donor string) (string, error) {
	var status string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectDonorStatus, donor).Scan(&status); err != nil {
		if infra.IsNoRows(err) {
			return "", domain.NotFound(domain.DoctypeDonor, donor)
		}
		return "", err
	}
	return status, nil
}

func (r *DeductionRepositoryPG) FundClassDefaults(ctx context.Context, fundClass, company string) (*domain.FundClassDefaults, error) {
	var d domain.FundClassDefaults
	err := r.sql.QueryRow(ctx, sqlinline.QSelectFundClassDefaults, fundClass, company).Scan(
		&d.FundClass,
		&d.Company,
		&d.EquityAccount,
		&d.ReceivableAccount,
		&d.CostCenter,
		&d.ServiceArea,
		&d.SubserviceArea,
		&d.Product,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.NotFound(domain.DoctypeFundClass, fundClass)
		}
		return nil, err
	}
	return &d, nil
}

// CompanyCurrency returns "" when the company has no row.
func (r *DeductionRepositoryPG) CompanyCurrency(ctx context.Context, company string) (string, error) {
	var currency string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectCompanyCurrency, company).Scan(&currency); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.ToUpper(currency), nil
}

// ExchangeRateRepositoryPG reads and writes currency_exchange rows.
type ExchangeRateRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewExchangeRateRepository(sql infra.SQLExecutor) *ExchangeRateRepositoryPG {
	return &ExchangeRateRepositoryPG{sql: sql}
}

// StoredRate returns the latest rate on or before the date, trying the
// inverse pair as well. A missing rate is reported as domain.ErrNotFound.
func (r *ExchangeRateRepositoryPG) StoredRate(ctx context.Context, from, to string, on time.Time) (float64, error) {
	var rate float64
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectStoredExchangeRate, from, to, on).Scan(&rate); err != nil {
		if infra.IsNoRows(err) {
			return 0, domain.NotFound(domain.DoctypeCurrencyRate, from+"-"+to)
		}
		return 0, err
	}
	return rate, nil
}

func (r *ExchangeRateRepositoryPG) SaveRate(ctx context.Context, from, to string, on time.Time, rate float64) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpsertExchangeRate, from, to, on, rate)
	return err
}

var (
	_ domain.DeductionRepository    = (*DeductionRepositoryPG)(nil)
	_ domain.ExchangeRateRepository = (*ExchangeRateRepositoryPG)(nil)
)
