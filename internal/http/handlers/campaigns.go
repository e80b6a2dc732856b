package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"donorcrm/internal/domain"
	"donorcrm/internal/messages"
	"donorcrm/internal/sqlinline"
)

const (
	defaultJobPage = 20
	maxJobPage     = 100
)

type campaignSendRequest struct {
	Force           bool   `json:"force"`
	EmailCampaignID string `json:"email_campaign_id"`
}

type moveMemberRequest struct {
	EmailGroup string `json:"email_group"`
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

func (a *App) CRMCampaignGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCRMCampaign, domain.ActionRead) {
		return
	}
	doc, err := a.Docs.Document(r.Context(), sqlinline.QSelectCRMCampaignDoc, domain.DoctypeCRMCampaign, chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, doc)
}

func (a *App) CRMCampaignDefaultList(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCRMCampaign, domain.ActionRead) {
		return
	}
	a.json(w, http.StatusOK, domain.CRMCampaignListSettings())
}

func (a *App) EmailCampaignsSend(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeEmailCampaign, domain.ActionWrite) {
		return
	}
	var req campaignSendRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.Dispatcher.Send(r.Context(), req.Force, req.EmailCampaignID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": a.translate(r, messages.EmailsSent, res.Recipients),
	})
}

func (a *App) EmailGroupMemberMove(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeEmailGroup, domain.ActionWrite) {
		return
	}
	var req moveMemberRequest
	if !a.decode(w, r, &req) {
		return
	}
	totals, err := a.Groups.MoveMember(r.Context(), chi.URLParam(r, "name"), req.EmailGroup)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "total_subscribers": totals})
}

func (a *App) EmailGroupUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeEmailGroup, domain.ActionWrite) {
		return
	}
	var req unsubscribeRequest
	if !a.decode(w, r, &req) {
		return
	}
	total, err := a.Groups.Unsubscribe(r.Context(), chi.URLParam(r, "name"), req.Email)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "total_subscribers": total})
}

// EmailCampaignJobs lists a page of the campaign's email jobs, newest first,
// with the outcome totals of all of them.
func (a *App) EmailCampaignJobs(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeEmailCampaign, domain.ActionRead) {
		return
	}
	limit, ok := a.queryInt(w, r, "limit", defaultJobPage)
	if !ok {
		return
	}
	offset, ok := a.queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	limit = min(max(limit, 1), maxJobPage)

	name := chi.URLParam(r, "name")
	jobs, err := a.Jobs.ListByCampaign(r.Context(), name, limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	summary, err := a.Jobs.Summary(r.Context(), name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"email_campaign": name,
		"jobs":           jobs,
		"summary":        summary,
		"limit":          limit,
		"offset":         offset,
	})
}

func (a *App) EmailJobGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeEmailCampaign, domain.ActionRead) {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, domain.Invalid("id", "email job id must be a UUID"))
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, job)
}

// queryInt reads a non-negative integer query parameter.
func (a *App) queryInt(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		a.fail(w, r, domain.Invalid(key, "%s must be a non-negative integer", key))
		return 0, false
	}
	return v, true
}
