package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"donorcrm/internal/domain"
	"donorcrm/internal/middleware"
)

type donorCreateRequest struct {
	Doc domain.Donor `json:"doc"`
}

type donorStatusRequest struct {
	Status string `json:"status"`
}

func (a *App) DonorGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionRead) {
		return
	}
	doc, err := a.Donors.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, doc)
}

func (a *App) DonorCreate(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionWrite) {
		return
	}
	var req donorCreateRequest
	if !a.decode(w, r, &req) {
		return
	}
	country := middleware.CountryFromContext(r.Context())
	res, err := a.Donors.Create(r.Context(), a.currentUser(r), country, req.Doc)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.mutation(w, r, http.StatusCreated, res)
}

func (a *App) DonorSetStatus(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionWrite) {
		return
	}
	var req donorStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.Donors.UpdateStatus(r.Context(), a.currentUser(r), chi.URLParam(r, "name"), req.Status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.mutation(w, r, http.StatusOK, res)
}

func (a *App) DonorDelete(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionDelete) {
		return
	}
	res, err := a.Donors.Delete(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.mutation(w, r, http.StatusOK, res)
}

func (a *App) DonorDefaultList(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionRead) {
		return
	}
	list := domain.DonorListSettings()
	a.json(w, http.StatusOK, map[string]any{
		"columns":         list.Columns,
		"rows":            list.Rows,
		"kanban_settings": domain.DonorKanbanSettings(),
	})
}

func (a *App) mutation(w http.ResponseWriter, r *http.Request, status int, res domain.MutationResult) {
	res.Message = a.translate(r, res.Message)
	a.json(w, status, res)
}
