package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"donorcrm/internal/activities"
	"donorcrm/internal/campaign"
	"donorcrm/internal/deduction"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
	"donorcrm/internal/messages"
	"donorcrm/internal/middleware"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type DonorService interface {
	Get(ctx context.Context, name string) (map[string]any, error)
	Create(ctx context.Context, owner, country string, d domain.Donor) (domain.MutationResult, error)
	UpdateStatus(ctx context.Context, user, name, status string) (domain.MutationResult, error)
	Delete(ctx context.Context, name string) (domain.MutationResult, error)
}

type ActivityService interface {
	Get(ctx context.Context, user, name string) (activities.Timeline, error)
}

type DashboardService interface {
	Dashboard(ctx context.Context, days int) (domain.LapsedDashboard, error)
}

type AddressService interface {
	Get(ctx context.Context, name string) (map[string]any, error)
	LinkedDeals(ctx context.Context, name string) ([]string, error)
	SetContact(ctx context.Context, name, field, value string) error
	SetFlag(ctx context.Context, name, field string, value bool) error
	Search(ctx context.Context, txt string) ([][3]string, error)
}

type DeductionService interface {
	Preview(ctx context.Context, in deduction.Input) (deduction.Result, error)
	Apply(ctx context.Context, donation string) (deduction.Result, error)
	FundClassDefaults(ctx context.Context, fundClass, company string) (*domain.FundClassDefaults, error)
}

type RateSource interface {
	Rate(ctx context.Context, from, to string, on time.Time) (float64, error)
}

type DonationReader interface {
	Get(ctx context.Context, name string) (*domain.Donation, error)
}

type LayoutService interface {
	InstallDonationQuickEntry(ctx context.Context) (bool, string, error)
}

// Documents loads a document with its field meta and form script.
type Documents interface {
	Document(ctx context.Context, query, doctype, name string) (map[string]any, error)
}

type CampaignDispatcher interface {
	Send(ctx context.Context, force bool, id string) (campaign.SendResult, error)
}

// EmailJobs reads dispatch outcomes from the email job queue.
type EmailJobs interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailJob, error)
	ListByCampaign(ctx context.Context, campaign string, limit, offset int) ([]domain.EmailJob, error)
	Summary(ctx context.Context, campaign string) (domain.EmailJobSummary, error)
}

type GroupService interface {
	MoveMember(ctx context.Context, member, group string) (map[string]int64, error)
	Unsubscribe(ctx context.Context, group, email string) (int64, error)
}

type CertificateService interface {
	Create(ctx context.Context, cert domain.Certificate) (*domain.Certificate, error)
	Get(ctx context.Context, name string) (*domain.Certificate, error)
	QRCode(ctx context.Context, name string) ([]byte, error)
	QRDataURI(ctx context.Context, name string) (string, error)
	ExportQRCodes(ctx context.Context, names []string) ([]byte, error)
	Verify(ctx context.Context, number string) (domain.CertificateVerification, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the services behind the HTTP handlers.
type App struct {
	Logger       infra.Logger
	DB           Pinger
	Donors       DonorService
	Activities   ActivityService
	Dashboard    DashboardService
	Addresses    AddressService
	Deductions   DeductionService
	Rates        RateSource
	Donations    DonationReader
	Layouts      LayoutService
	Docs         Documents
	Dispatcher   CampaignDispatcher
	Jobs         EmailJobs
	Groups       GroupService
	Certificates CertificateService
	Now          func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the error envelope; key is translated when the catalog
// knows it.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, key string, args ...any) {
	a.json(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": a.translate(r, key, args...),
	})
}

func (a *App) translate(r *http.Request, key string, args ...any) string {
	return messages.Translate(middleware.LocaleFromContext(r.Context()), key, args...)
}

// fail maps a service error onto a status code and error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	var nf *domain.NotFoundError
	var blocked *domain.BlockedDonorError
	switch {
	case errors.As(err, &verr):
		a.error(w, r, http.StatusBadRequest, "validation_error", verr.Message)
	case errors.As(err, &nf):
		a.notFound(w, r, nf)
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "not_found", messages.DocumentNotFound)
	case errors.As(err, &blocked):
		a.error(w, r, http.StatusBadRequest, "blocked_donor", messages.DonorBlockedAt, blocked.Row, blocked.Donor)
	case errors.Is(err, domain.ErrBlockedDonor):
		a.error(w, r, http.StatusBadRequest, "blocked_donor", messages.DonorBlocked)
	case errors.Is(err, domain.ErrPermission):
		a.error(w, r, http.StatusForbidden, "forbidden", messages.NotPermitted)
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, "unauthorized", messages.MissingAuth)
	case errors.Is(err, domain.ErrDuplicate):
		a.error(w, r, http.StatusConflict, "duplicate", messages.Duplicate)
	case errors.Is(err, domain.ErrLinked):
		a.error(w, r, http.StatusConflict, "linked", messages.Linked)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, "internal", messages.Internal)
	}
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request, nf *domain.NotFoundError) {
	switch {
	case nf.Doctype == domain.DoctypeAddress:
		a.error(w, r, http.StatusNotFound, "not_found", messages.AddressNotFound)
	case nf.Doctype == domain.DoctypeDonor:
		a.error(w, r, http.StatusNotFound, "not_found", messages.DonorNotFound)
	case nf.Doctype == domain.DoctypeCertificate:
		a.error(w, r, http.StatusNotFound, "not_found", messages.CertificateNotFound)
	case nf.Name == "" || nf.Doctype == "Document":
		a.error(w, r, http.StatusNotFound, "not_found", messages.DocumentNotFound)
	default:
		a.error(w, r, http.StatusNotFound, "not_found", messages.NotFound, nf.Doctype, nf.Name)
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	a.error(w, r, http.StatusBadRequest, "bad_request", messages.InvalidPayload)
	return false
}

func (a *App) currentUser(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// authorize checks the caller's roles for action on doctype and writes a
// 403 when they are insufficient.
func (a *App) authorize(w http.ResponseWriter, r *http.Request, doctype string, action domain.Action) bool {
	if domain.Can(middleware.RolesFromContext(r.Context()), doctype, action) {
		return true
	}
	a.error(w, r, http.StatusForbidden, "forbidden", messages.NotPermitted)
	return false
}
