package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

const uniqueViolation = "23505"

// CertificateRepositoryPG stores tax exemption certificates.
type CertificateRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewCertificateRepository(sql infra.SQLExecutor) *CertificateRepositoryPG {
	return &CertificateRepositoryPG{sql: sql}
}

func (r *CertificateRepositoryPG) Create(ctx context.Context, cert *domain.Certificate) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertCertificate,
		cert.Name,
		cert.CertificateNumber,
		cert.Donor,
		cert.DonorAddress,
		cert.DonorCNICNTN,
		cert.DonationDate,
		cert.DateOfIssue,
		cert.TotalDonation,
		cert.PaymentMethod,
		cert.GeneratedTimestamp,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicate
	}
	return err
}

func (r *CertificateRepositoryPG) GetByName(ctx context.Context, name string) (*domain.Certificate, error) {
	return r.scan(r.sql.QueryRow(ctx, sqlinline.QSelectCertificateByName, name), name)
}

func (r *CertificateRepositoryPG) GetByNumber(ctx context.Context, number string) (*domain.Certificate, error) {
	return r.scan(r.sql.QueryRow(ctx, sqlinline.QSelectCertificateByNumber, number), number)
}

func (r *CertificateRepositoryPG) scan(row interface{ Scan(...any) error }, key string) (*domain.Certificate, error) {
	var c domain.Certificate
	if err := row.Scan(
		&c.Name,
		&c.CertificateNumber,
		&c.Donor,
		&c.DonorAddress,
		&c.DonorCNICNTN,
		&c.DonationDate,
		&c.DateOfIssue,
		&c.TotalDonation,
		&c.PaymentMethod,
		&c.GeneratedTimestamp,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.NotFound(domain.DoctypeCertificate, key)
		}
		return nil, err
	}
	return &c, nil
}

var _ domain.CertificateRepository = (*CertificateRepositoryPG)(nil)
