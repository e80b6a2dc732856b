package repo

import (
	"context"
	"fmt"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// DonationRepositoryPG implements DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	sql infra.TxRunner
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.TxRunner) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Get loads a donation with its payment and breakeven child rows.
func (r *DonationRepositoryPG) Get(ctx context.Context, name string) (*domain.Donation, error) {
	var d domain.Donation
	var docstatus int16
	err := r.sql.QueryRow(ctx, sqlinline.QSelectDonation, name).Scan(
		&d.Name,
		&d.Company,
		&d.DonorIdentity,
		&d.ContributionType,
		&d.PostingDate,
		&d.DueDate,
		&d.Currency,
		&d.Status,
		&d.CostCenter,
		&docstatus,
		&d.Owner,
		&d.Creation,
		&d.Modified,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.NotFound(domain.DoctypeDonation, name)
		}
		return nil, err
	}
	d.DocStatus = domain.DocStatus(docstatus)

	payments, err := r.payments(ctx, name)
	if err != nil {
		return nil, err
	}
	d.Payments = payments

	breakeven, err := r.breakeven(ctx, name)
	if err != nil {
		return nil, err
	}
	d.Breakeven = breakeven
	return &d, nil
}

func (r *DonationRepositoryPG) payments(ctx context.Context, name string) ([]domain.PaymentDetail, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListPaymentDetails, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.PaymentDetail{}
	for rows.Next() {
		var p domain.PaymentDetail
		if err := rows.Scan(
			&p.Name,
			&p.Idx,
			&p.Donor,
			&p.FundClass,
			&p.IntentionID,
			&p.ModeOfPayment,
			&p.DonationAmount,
			&p.DeductionAmount,
			&p.NetAmount,
			&p.OutstandingAmount,
			&p.BaseDonationAmount,
			&p.BaseDeductionAmount,
			&p.BaseNetAmount,
			&p.BaseOutstandingAmount,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *DonationRepositoryPG) breakeven(ctx context.Context, name string) ([]domain.DeductionBreakeven, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDeductionBreakeven, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.DeductionBreakeven{}
	for rows.Next() {
		var b domain.DeductionBreakeven
		if err := rows.Scan(
			&b.Idx,
			&b.PaymentIdx,
			&b.Donor,
			&b.FundClass,
			&b.IntentionID,
			&b.Company,
			&b.Account,
			&b.Percentage,
			&b.MinPercent,
			&b.MaxPercent,
			&b.Amount,
			&b.BaseAmount,
			&b.CostCenter,
			&b.Project,
		); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// SaveDeductions replaces the breakeven rows and payment amounts of a
// donation in one transaction.
func (r *DonationRepositoryPG) SaveDeductions(ctx context.Context, name string, payments []domain.PaymentDetail, breakeven []domain.DeductionBreakeven) error {
	return r.sql.WithTx(ctx, func(tx infra.SQLExecutor) error {
		for _, p := range payments {
			if _, err := tx.Exec(ctx, sqlinline.QUpdatePaymentAmounts,
				name,
				p.Idx,
				p.DeductionAmount,
				p.NetAmount,
				p.OutstandingAmount,
				p.BaseDonationAmount,
				p.BaseDeductionAmount,
				p.BaseNetAmount,
				p.BaseOutstandingAmount,
			); err != nil {
				return fmt.Errorf("update payment row %d: %w", p.Idx, err)
			}
		}
		if _, err := tx.Exec(ctx, sqlinline.QDeleteDeductionBreakeven, name); err != nil {
			return fmt.Errorf("clear breakeven: %w", err)
		}
		for _, b := range breakeven {
			if _, err := tx.Exec(ctx, sqlinline.QInsertDeductionBreakeven,
				name,
				b.Idx,
				b.PaymentIdx,
				b.Donor,
				b.FundClass,
				b.IntentionID,
				b.Company,
				b.Account,
				b.Percentage,
				b.MinPercent,
				b.MaxPercent,
				b.Amount,
				b.BaseAmount,
				b.CostCenter,
				b.Project,
			); err != nil {
				return fmt.Errorf("insert breakeven row %d: %w", b.Idx, err)
			}
		}
		_, err := tx.Exec(ctx, sqlinline.QTouchDonation, name)
		return err
	})
}

// CreateDraft inserts a draft donation with default header values. It is a
// no-op when the name already exists.
func (r *DonationRepositoryPG) CreateDraft(ctx context.Context, name, company, currency, owner string) error {
	var costCenter string
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectFirstLeafCostCenter).Scan(&costCenter); err != nil && !infra.IsNoRows(err) {
		return err
	}
	return r.sql.WithTx(ctx, func(tx infra.SQLExecutor) error {
		if _, err := tx.Exec(ctx, sqlinline.QEnsureCompany, company, currency); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, sqlinline.QInsertDraftDonation, name, company, currency, costCenter, owner)
		return err
	})
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
