package donor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"donorcrm/internal/docmeta"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/infra/pgxtest"
	"donorcrm/internal/sqlinline"
)

func newTestService(sql *pgxtest.Executor, names *fakeNames) *Service {
	return NewService(sql, names, docmeta.NewStore(sql), infra.NopLogger())
}

func TestCreateComposesNameAndNormalizes(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QDonorCNICTaken] = pgxtest.Returns(false)
	names := &fakeNames{name: "DONOR-2026-00001"}
	svc := newTestService(sql, names)

	res, err := svc.Create(context.Background(), "agent@example.org", "PK", domain.Donor{
		Salutation:         "mr",
		FirstName:          "ali",
		LastName:           "khan",
		Email:              "ali@example.org",
		IdentificationType: domain.IdentificationCNIC,
		CNIC:               "3520212345671",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !res.Success || res.Name != "DONOR-2026-00001" || !res.RefreshRequired {
		t.Fatalf("unexpected result %+v", res)
	}
	if names.series != domain.DefaultDonorNamingSeries {
		t.Fatalf("series = %q", names.series)
	}

	inserts := sql.ExecsOf(sqlinline.QInsertDonor)
	if len(inserts) != 1 {
		t.Fatalf("expected one insert, got %d", len(inserts))
	}
	args := inserts[0].Args
	if args[2] != "Mr Ali Khan" {
		t.Fatalf("donor_name = %v", args[2])
	}
	if args[8] != "Mr Ali Khan" {
		t.Fatalf("title = %v", args[8])
	}
	if args[13] != domain.DonorStatusNew {
		t.Fatalf("status = %v", args[13])
	}
	if args[17] != "35202-1234567-1" {
		t.Fatalf("cnic = %v", args[17])
	}
	if args[19] != "Pakistan" {
		t.Fatalf("country = %v", args[19])
	}
	if args[21] != "agent@example.org" {
		t.Fatalf("owner = %v", args[21])
	}
}

func TestCreateFallsBackToOrganizationAndEmail(t *testing.T) {
	sql := pgxtest.NewExecutor()
	svc := newTestService(sql, &fakeNames{name: "DONOR-2026-00002"})

	if _, err := svc.Create(context.Background(), "", "", domain.Donor{Organization: "Acme Trust"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "", "", domain.Donor{Email: "zara@example.org"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	inserts := sql.ExecsOf(sqlinline.QInsertDonor)
	if inserts[0].Args[2] != "Acme Trust" || inserts[1].Args[2] != "zara" {
		t.Fatalf("donor names = %v, %v", inserts[0].Args[2], inserts[1].Args[2])
	}
	if inserts[1].Args[21] != "Administrator" {
		t.Fatalf("default owner = %v", inserts[1].Args[21])
	}
}

func TestCreateValidation(t *testing.T) {
	tests := map[string]domain.Donor{
		"no name":        {},
		"bad email":      {FirstName: "Ali", Email: "not an email"},
		"owner email":    {FirstName: "Ali", Email: "owner@example.org", DonorOwner: "OWNER@example.org"},
		"unknown status": {FirstName: "Ali", Status: "Dormant"},
		"bad cnic":       {FirstName: "Ali", IdentificationType: domain.IdentificationCNIC, CNIC: "123"},
	}
	for name, d := range tests {
		t.Run(name, func(t *testing.T) {
			sql := pgxtest.NewExecutor()
			svc := newTestService(sql, &fakeNames{name: "DONOR-X"})
			_, err := svc.Create(context.Background(), "", "", d)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(sql.Execs) != 0 {
				t.Fatalf("nothing should be written, got %d execs", len(sql.Execs))
			}
		})
	}
}

func TestCreateRejectsDuplicateCNIC(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QDonorCNICTaken] = pgxtest.Returns(true)
	svc := newTestService(sql, &fakeNames{name: "DONOR-X"})

	_, err := svc.Create(context.Background(), "", "", domain.Donor{
		FirstName:          "Ali",
		IdentificationType: domain.IdentificationNTN,
		CNIC:               "1234567",
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestCreateBranchSeries(t *testing.T) {
	const series = "{branch_abbreviation}-DONOR-.YYYY.-"

	t.Run("resolved", func(t *testing.T) {
		sql := pgxtest.NewExecutor()
		sql.Rows[sqlinline.QSelectBranchAbbreviation] = pgxtest.Returns("LHR")
		names := &fakeNames{name: "LHR-DONOR-2026-00001"}
		svc := newTestService(sql, names)
		if _, err := svc.Create(context.Background(), "", "", domain.Donor{FirstName: "Ali", NamingSeries: series, Branch: "Lahore"}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if names.series != series || names.vars["branch_abbreviation"] != "LHR" {
			t.Fatalf("series %q vars %v", names.series, names.vars)
		}
	})

	t.Run("missing abbreviation", func(t *testing.T) {
		sql := pgxtest.NewExecutor()
		sql.Rows[sqlinline.QSelectBranchAbbreviation] = pgxtest.Fails(pgx.ErrNoRows)
		names := &fakeNames{name: "DONOR-2026-00001"}
		svc := newTestService(sql, names)
		if _, err := svc.Create(context.Background(), "", "", domain.Donor{FirstName: "Ali", NamingSeries: series, Branch: "Nowhere"}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if names.series != domain.DefaultDonorNamingSeries {
			t.Fatalf("series = %q", names.series)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("changed", func(t *testing.T) {
		sql := pgxtest.NewExecutor()
		sql.Rows[sqlinline.QSelectDonorStatusForUpdate] = pgxtest.Returns(domain.DonorStatusNew)
		svc := newTestService(sql, &fakeNames{})
		res, err := svc.UpdateStatus(context.Background(), "agent@example.org", "DONOR-1", domain.DonorStatusBlocked)
		if err != nil || !res.Success {
			t.Fatalf("UpdateStatus = %+v, %v", res, err)
		}
		versions := sql.ExecsOf(sqlinline.QInsertVersion)
		if len(versions) != 1 {
			t.Fatalf("expected one version, got %d", len(versions))
		}
		data := string(versions[0].Args[2].([]byte))
		if !strings.Contains(data, `["status","New","Blocked"]`) {
			t.Fatalf("version data = %s", data)
		}
	})

	t.Run("unchanged", func(t *testing.T) {
		sql := pgxtest.NewExecutor()
		sql.Rows[sqlinline.QSelectDonorStatusForUpdate] = pgxtest.Returns(domain.DonorStatusActive)
		svc := newTestService(sql, &fakeNames{})
		if _, err := svc.UpdateStatus(context.Background(), "", "DONOR-1", domain.DonorStatusActive); err != nil {
			t.Fatalf("UpdateStatus returned error: %v", err)
		}
		if len(sql.Execs) != 0 {
			t.Fatalf("expected no writes, got %d", len(sql.Execs))
		}
	})

	t.Run("missing", func(t *testing.T) {
		sql := pgxtest.NewExecutor()
		sql.Rows[sqlinline.QSelectDonorStatusForUpdate] = pgxtest.Fails(pgx.ErrNoRows)
		svc := newTestService(sql, &fakeNames{})
		_, err := svc.UpdateStatus(context.Background(), "", "DONOR-404", domain.DonorStatusActive)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		svc := newTestService(pgxtest.NewExecutor(), &fakeNames{})
		_, err := svc.UpdateStatus(context.Background(), "", "DONOR-1", "Sleeping")
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Tags[sqlinline.QDeleteDonor] = pgconn.NewCommandTag("DELETE 0")
	svc := newTestService(sql, &fakeNames{})
	if _, err := svc.Delete(context.Background(), "DONOR-404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	sql.Tags[sqlinline.QDeleteDonor] = pgconn.NewCommandTag("DELETE 1")
	res, err := svc.Delete(context.Background(), "DONOR-1")
	if err != nil || !res.Success {
		t.Fatalf("Delete = %+v, %v", res, err)
	}

	sql.ExecErr[sqlinline.QDeleteDonor] = &pgconn.PgError{Code: "23503"}
	if _, err := svc.Delete(context.Background(), "DONOR-2"); !errors.Is(err, domain.ErrLinked) {
		t.Fatalf("expected linked error, got %v", err)
	}
}

func TestCountryName(t *testing.T) {
	if got := CountryName("PK"); got != "Pakistan" {
		t.Fatalf("CountryName(PK) = %q", got)
	}
	if got := CountryName("zz9"); got != "" {
		t.Fatalf("CountryName(invalid) = %q", got)
	}
}
