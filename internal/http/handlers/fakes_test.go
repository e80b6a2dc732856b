package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"donorcrm/internal/activities"
	"donorcrm/internal/campaign"
	"donorcrm/internal/deduction"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
)

type fakeDonors struct {
	created  domain.Donor
	owner    string
	country  string
	getErr   error
	err      error
	statusOf map[string]string
}

func (f *fakeDonors) Get(_ context.Context, name string) (map[string]any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return map[string]any{"name": name, "doctype": domain.DoctypeDonor}, nil
}

func (f *fakeDonors) Create(_ context.Context, owner, country string, d domain.Donor) (domain.MutationResult, error) {
	if f.err != nil {
		return domain.MutationResult{}, f.err
	}
	f.created, f.owner, f.country = d, owner, country
	return domain.MutationResult{Success: true, Message: "Donor created successfully", Name: "DONOR-2026-00001", RefreshRequired: true}, nil
}

func (f *fakeDonors) UpdateStatus(_ context.Context, _ string, name, status string) (domain.MutationResult, error) {
	if f.err != nil {
		return domain.MutationResult{}, f.err
	}
	if f.statusOf == nil {
		f.statusOf = map[string]string{}
	}
	f.statusOf[name] = status
	return domain.MutationResult{Success: true, Message: "Status updated successfully", RefreshRequired: true}, nil
}

func (f *fakeDonors) Delete(_ context.Context, name string) (domain.MutationResult, error) {
	if f.err != nil {
		return domain.MutationResult{}, f.err
	}
	return domain.MutationResult{Success: true, Message: "Donor deleted successfully", RefreshRequired: true}, nil
}

type fakeActivities struct{ err error }

func (f fakeActivities) Get(context.Context, string, string) (activities.Timeline, error) {
	return activities.Timeline{}, f.err
}

type fakeDashboard struct{ days int }

func (f *fakeDashboard) Dashboard(_ context.Context, days int) (domain.LapsedDashboard, error) {
	f.days = days
	return domain.LapsedDashboard{TotalActiveDonors: 10, TotalLapsedDonors: 2, ReEngagementRate: 80, LapsedDonorsList: []domain.LapsedDonor{}, WindowDays: days}, nil
}

type fakeAddresses struct {
	flagField string
	flagValue bool
}

func (f *fakeAddresses) Get(_ context.Context, name string) (map[string]any, error) {
	if name == "missing" {
		return nil, domain.NotFound(domain.DoctypeAddress, name)
	}
	return map[string]any{"name": name}, nil
}

func (f *fakeAddresses) LinkedDeals(context.Context, string) ([]string, error) {
	return []string{}, nil
}

func (f *fakeAddresses) SetContact(_ context.Context, _, field, _ string) error {
	if field != "email" && field != "phone" && field != "fax" {
		return domain.Invalid("field", "Invalid field")
	}
	return nil
}

func (f *fakeAddresses) SetFlag(_ context.Context, _, field string, value bool) error {
	f.flagField, f.flagValue = field, value
	return nil
}

func (f *fakeAddresses) Search(context.Context, string) ([][3]string, error) {
	return [][3]string{{"Head Office", "Lahore", "ADDR-1"}}, nil
}

type fakeDeductions struct{ in deduction.Input }

func (f *fakeDeductions) Preview(_ context.Context, in deduction.Input) (deduction.Result, error) {
	f.in = in
	return deduction.Result{Currency: in.Currency}, nil
}

func (f *fakeDeductions) Apply(_ context.Context, name string) (deduction.Result, error) {
	return deduction.Result{}, domain.NotFound(domain.DoctypeDonation, name)
}

func (f *fakeDeductions) FundClassDefaults(context.Context, string, string) (*domain.FundClassDefaults, error) {
	return &domain.FundClassDefaults{}, nil
}

type fakeRates struct{ calls int }

func (f *fakeRates) Rate(context.Context, string, string, time.Time) (float64, error) {
	f.calls++
	return 0.0036, nil
}

type fakeDispatcher struct {
	force bool
	id    string
}

func (f *fakeDispatcher) Send(_ context.Context, force bool, id string) (campaign.SendResult, error) {
	f.force, f.id = force, id
	return campaign.SendResult{Recipients: 7, Enqueued: 7, Campaigns: 1}, nil
}

type fakeJobs struct {
	jobs          []domain.EmailJob
	limit, offset int
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*domain.EmailJob, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, domain.NotFound("Email Job", id.String())
}

func (f *fakeJobs) ListByCampaign(_ context.Context, campaign string, limit, offset int) ([]domain.EmailJob, error) {
	f.limit, f.offset = limit, offset
	var out []domain.EmailJob
	for _, j := range f.jobs {
		if j.EmailCampaign == campaign {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobs) Summary(_ context.Context, campaign string) (domain.EmailJobSummary, error) {
	var s domain.EmailJobSummary
	for _, j := range f.jobs {
		if j.EmailCampaign != campaign {
			continue
		}
		s.Total++
		switch j.Status {
		case domain.EmailJobSent:
			s.Sent++
		case domain.EmailJobFailed:
			s.Failed++
		case domain.EmailJobSkipped:
			s.Skipped++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Sent) * 100 / float64(s.Total)
	}
	return s, nil
}

type fakeCertificates struct{}

func (fakeCertificates) Create(_ context.Context, c domain.Certificate) (*domain.Certificate, error) {
	c.Name = "TEC-2026-00001"
	c.CertificateNumber = "CERT-ABCD1234"
	return &c, nil
}

func (fakeCertificates) Get(_ context.Context, name string) (*domain.Certificate, error) {
	return &domain.Certificate{Name: name}, nil
}

func (fakeCertificates) QRCode(_ context.Context, name string) ([]byte, error) {
	if name == "missing" {
		return nil, domain.NotFound(domain.DoctypeCertificate, name)
	}
	return []byte("\x89PNG fake"), nil
}

func (fakeCertificates) QRDataURI(context.Context, string) (string, error) {
	return "data:image/png;base64,AAAA", nil
}

func (fakeCertificates) ExportQRCodes(context.Context, []string) ([]byte, error) {
	return []byte("PK"), nil
}

func (fakeCertificates) Verify(_ context.Context, number string) (domain.CertificateVerification, error) {
	if number == "CERT-ABCD1234" {
		return domain.CertificateVerification{Valid: true, Certificate: &domain.Certificate{Name: "TEC-1", CertificateNumber: number}}, nil
	}
	return domain.CertificateVerification{Valid: false, Message: "Certificate not found"}, nil
}

func newTestApp() *App {
	return &App{
		Logger:       infra.NopLogger(),
		Donors:       &fakeDonors{},
		Activities:   fakeActivities{},
		Dashboard:    &fakeDashboard{},
		Addresses:    &fakeAddresses{},
		Deductions:   &fakeDeductions{},
		Rates:        &fakeRates{},
		Dispatcher:   &fakeDispatcher{},
		Jobs:         &fakeJobs{},
		Certificates: fakeCertificates{},
		Now:          func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) },
	}
}
