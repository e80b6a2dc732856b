package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"donorcrm/internal/address"
	"donorcrm/internal/domain"
)

type addressFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (a *App) AddressGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeAddress, domain.ActionRead) {
		return
	}
	doc, err := a.Addresses.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, doc)
}

func (a *App) AddressDeals(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeAddress, domain.ActionRead) {
		return
	}
	deals, err := a.Addresses.LinkedDeals(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, deals)
}

func (a *App) AddressSetContact(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeAddress, domain.ActionWrite) {
		return
	}
	var req addressFieldRequest
	if !a.decode(w, r, &req) {
		return
	}
	value, _ := req.Value.(string)
	if err := a.Addresses.SetContact(r.Context(), chi.URLParam(r, "name"), req.Field, value); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) AddressSetPrimary(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeAddress, domain.ActionWrite) {
		return
	}
	var req addressFieldRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Addresses.SetFlag(r.Context(), chi.URLParam(r, "name"), req.Field, address.Truthy(req.Value)); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) AddressSearch(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeAddress, domain.ActionRead) {
		return
	}
	results, err := a.Addresses.Search(r.Context(), r.URL.Query().Get("txt"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, results)
}
