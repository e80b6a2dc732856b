package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"donorcrm/internal/domain"
)

// ActivitiesGet returns [activities, calls, notes, tasks, attachments] for
// a deal, lead, donor or donation.
func (a *App) ActivitiesGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionRead) {
		return
	}
	timeline, err := a.Activities.Get(r.Context(), a.currentUser(r), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, timeline)
}
