package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/currency"

	"donorcrm/internal/deduction"
	"donorcrm/internal/domain"
)

const dateLayout = "2006-01-02"

// deductionRequest is deduction.Input with a posting date accepted either
// as a plain date or as RFC 3339.
type deductionRequest struct {
	Company          string                 `json:"company"`
	Currency         string                 `json:"currency"`
	PostingDate      string                 `json:"posting_date"`
	ContributionType string                 `json:"contribution_type"`
	Rows             []deduction.PaymentRow `json:"payment_detail"`
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.Invalid(field, "%q is not a date", raw)
}

func (a *App) DonationGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonation, domain.ActionRead) {
		return
	}
	d, err := a.Donations.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if d.Payments == nil {
		d.Payments = []domain.PaymentDetail{}
	}
	if d.Breakeven == nil {
		d.Breakeven = []domain.DeductionBreakeven{}
	}
	a.json(w, http.StatusOK, d)
}

func (a *App) DeductionPreview(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonation, domain.ActionRead) {
		return
	}
	var req deductionRequest
	if !a.decode(w, r, &req) {
		return
	}
	posting, err := parseDate("posting_date", req.PostingDate)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Deductions.Preview(r.Context(), deduction.Input{
		Company:          req.Company,
		Currency:         req.Currency,
		PostingDate:      posting,
		ContributionType: req.ContributionType,
		Rows:             req.Rows,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *App) DeductionApply(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonation, domain.ActionWrite) {
		return
	}
	res, err := a.Deductions.Apply(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *App) FundClassDefaults(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeFundClass, domain.ActionRead) {
		return
	}
	defaults, err := a.Deductions.FundClassDefaults(r.Context(), chi.URLParam(r, "name"), r.URL.Query().Get("company"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, defaults)
}

func (a *App) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	for field, code := range map[string]string{"from": from, "to": to} {
		if _, err := currency.ParseISO(code); err != nil {
			a.fail(w, r, domain.Invalid(field, "%q is not an ISO 4217 currency code", code))
			return
		}
	}
	on, err := parseDate("date", q.Get("date"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if on.IsZero() {
		on = a.now()
	}
	if from == to {
		a.json(w, http.StatusOK, map[string]any{"rate": 1.0})
		return
	}
	rate, err := a.Rates.Rate(r.Context(), from, to, on)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"rate": rate})
}

func (a *App) DonationQuickEntryLayout(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeFieldsLayout, domain.ActionWrite) {
		return
	}
	created, msg, err := a.Layouts.InstallDonationQuickEntry(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	a.json(w, status, map[string]any{"message": a.translate(r, msg)})
}
