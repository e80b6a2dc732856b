// Package donor implements donor creation, status changes and deletion.
package donor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"donorcrm/internal/docmeta"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/messages"
	"donorcrm/internal/sqlinline"
)

const branchAbbreviationVar = "branch_abbreviation"

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var validStatuses = map[string]bool{
	domain.DonorStatusNew:     true,
	domain.DonorStatusActive:  true,
	domain.DonorStatusBlocked: true,
}

// NameSource generates document names from a naming series.
type NameSource interface {
	Next(ctx context.Context, series string, vars map[string]string) (string, error)
}

type Service struct {
	sql    infra.TxRunner
	names  NameSource
	meta   *docmeta.Store
	logger infra.Logger
	now    func() time.Time
}

func NewService(sql infra.TxRunner, names NameSource, meta *docmeta.Store, logger infra.Logger) *Service {
	return &Service{sql: sql, names: names, meta: meta, logger: logger, now: time.Now}
}

// Get returns the donor document with its field meta and form script.
func (s *Service) Get(ctx context.Context, name string) (map[string]any, error) {
	return s.meta.Document(ctx, sqlinline.QSelectDonorDoc, domain.DoctypeDonor, name)
}

// Create validates and inserts a donor. country is the ISO region of the
// caller and only fills an empty country field.
func (s *Service) Create(ctx context.Context, owner, country string, d domain.Donor) (domain.MutationResult, error) {
	series, err := s.resolveSeries(ctx, &d)
	if err != nil {
		return domain.MutationResult{}, err
	}
	if err := s.prepare(ctx, &d, country); err != nil {
		return domain.MutationResult{}, err
	}

	name, err := s.names.Next(ctx, series, map[string]string{branchAbbreviationVar: d.BranchAbbreviation})
	if err != nil {
		return domain.MutationResult{}, err
	}
	d.Name = name
	d.NamingSeries = series
	if owner == "" {
		owner = "Administrator"
	}

	_, err = s.sql.Exec(ctx, sqlinline.QInsertDonor,
		d.Name,
		d.NamingSeries,
		d.DonorName,
		d.Salutation,
		d.FirstName,
		d.MiddleName,
		d.LastName,
		d.Organization,
		d.Title,
		d.Email,
		d.Phone,
		d.MobileNo,
		d.DonorOwner,
		d.Status,
		d.DonorType,
		d.Department,
		d.IdentificationType,
		d.CNIC,
		d.Branch,
		d.Country,
		d.Image,
		owner,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.MutationResult{}, fmt.Errorf("donor %s: %w", d.Name, domain.ErrDuplicate)
		}
		return domain.MutationResult{}, err
	}
	s.logger.Info().Str("donor", d.Name).Str("owner", owner).Msg("donor: created")

	return domain.MutationResult{
		Success:         true,
		Message:         messages.DonorCreated,
		Name:            d.Name,
		RefreshRequired: true,
		Timestamp:       s.now(),
	}, nil
}

// resolveSeries falls back to the default series when a branch abbreviation
// is required but cannot be found.
func (s *Service) resolveSeries(ctx context.Context, d *domain.Donor) (string, error) {
	series := strings.TrimSpace(d.NamingSeries)
	if series == "" {
		return domain.DefaultDonorNamingSeries, nil
	}
	if !strings.Contains(series, "{"+branchAbbreviationVar+"}") || strings.TrimSpace(d.BranchAbbreviation) != "" {
		return series, nil
	}
	if strings.TrimSpace(d.Branch) == "" {
		return domain.DefaultDonorNamingSeries, nil
	}
	var abbr string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectBranchAbbreviation, d.Branch).Scan(&abbr); err != nil && !infra.IsNoRows(err) {
		return "", fmt.Errorf("branch abbreviation: %w", err)
	}
	if abbr = strings.TrimSpace(abbr); abbr == "" {
		return domain.DefaultDonorNamingSeries, nil
	}
	d.BranchAbbreviation = abbr
	return series, nil
}

func (s *Service) prepare(ctx context.Context, d *domain.Donor, country string) error {
	caser := cases.Title(language.Und)
	if first := strings.TrimSpace(d.FirstName); first != "" {
		var parts []string
		for _, p := range []string{d.Salutation, d.FirstName, d.MiddleName, d.LastName} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, caser.String(p))
			}
		}
		d.DonorName = strings.Join(parts, " ")
	}
	d.Organization = strings.TrimSpace(d.Organization)
	d.Email = strings.TrimSpace(d.Email)
	if strings.TrimSpace(d.DonorName) == "" {
		switch {
		case d.Organization != "":
			d.DonorName = d.Organization
		case d.Email != "":
			d.DonorName = strings.SplitN(d.Email, "@", 2)[0]
		default:
			return domain.Invalid("donor_name", "A Donor requires either a person's name or an organization's name")
		}
	}
	d.Title = d.Organization
	if d.Title == "" {
		d.Title = d.DonorName
	}

	if d.Email != "" {
		addr, err := mail.ParseAddress(d.Email)
		if err != nil || addr.Address != d.Email {
			return domain.Invalid("email", "%s is not a valid email address", d.Email)
		}
		if strings.EqualFold(d.Email, strings.TrimSpace(d.DonorOwner)) {
			return domain.Invalid("email", "Donor Owner cannot be same as the Donor Email Address")
		}
	}

	if d.Status == "" {
		d.Status = domain.DonorStatusNew
	}
	if !validStatuses[d.Status] {
		return domain.Invalid("status", "unknown donor status %q", d.Status)
	}

	number, err := NormalizeIdentification(d.IdentificationType, d.CNIC)
	if err != nil {
		return err
	}
	d.CNIC = number
	if d.CNIC != "" {
		var taken bool
		if err := s.sql.QueryRow(ctx, sqlinline.QDonorCNICTaken, d.CNIC, d.Name).Scan(&taken); err != nil {
			return fmt.Errorf("cnic lookup: %w", err)
		}
		if taken {
			return fmt.Errorf("identification number %s is already used by another donor: %w", d.CNIC, domain.ErrDuplicate)
		}
	}

	if strings.TrimSpace(d.Country) == "" {
		d.Country = CountryName(country)
	}
	return nil
}

// CountryName returns the English name of an ISO 3166 region code, or "".
func CountryName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return ""
	}
	return display.English.Regions().Name(region)
}

// UpdateStatus sets the donor status. A version row is written only when
// the value changes, so repeating the call is harmless.
func (s *Service) UpdateStatus(ctx context.Context, user, name, status string) (domain.MutationResult, error) {
	status = strings.TrimSpace(status)
	if !validStatuses[status] {
		return domain.MutationResult{}, domain.Invalid("status", "unknown donor status %q", status)
	}
	changed := false
	err := s.sql.WithTx(ctx, func(tx infra.SQLExecutor) error {
		var current string
		if err := tx.QueryRow(ctx, sqlinline.QSelectDonorStatusForUpdate, name).Scan(&current); err != nil {
			if infra.IsNoRows(err) {
				return domain.NotFound(domain.DoctypeDonor, name)
			}
			return err
		}
		if current == status {
			return nil
		}
		if _, err := tx.Exec(ctx, sqlinline.QUpdateDonorStatus, name, status); err != nil {
			return err
		}
		data, err := json.Marshal(map[string]any{"changed": [][]string{{"status", current, status}}})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sqlinline.QInsertVersion, domain.DoctypeDonor, name, data, user); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return domain.MutationResult{}, err
	}
	if changed {
		s.logger.Info().Str("donor", name).Str("status", status).Msg("donor: status changed")
	}
	return domain.MutationResult{
		Success:         true,
		Message:         messages.DonorStatusUpdated,
		RefreshRequired: true,
		Timestamp:       s.now(),
	}, nil
}

// Delete removes a donor that no donation references.
func (s *Service) Delete(ctx context.Context, name string) (domain.MutationResult, error) {
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteDonor, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.MutationResult{}, fmt.Errorf("donor %s: %w", name, domain.ErrLinked)
		}
		return domain.MutationResult{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.MutationResult{}, domain.NotFound(domain.DoctypeDonor, name)
	}
	return domain.MutationResult{
		Success:         true,
		Message:         messages.DonorDeleted,
		RefreshRequired: true,
		Timestamp:       s.now(),
	}, nil
}

// CreatePlaceholder inserts a minimal donor for a name that was referenced
// before it existed. Existing donors are left alone.
func (s *Service) CreatePlaceholder(ctx context.Context, name, owner string) error {
	if owner == "" {
		owner = "Administrator"
	}
	_, err := s.sql.Exec(ctx, sqlinline.QInsertPlaceholderDonor,
		name,
		"Donor "+name,
		strings.ToLower(name)+"@example.com",
		owner,
	)
	return err
}
