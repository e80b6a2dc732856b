package handlers

import (
	"net/http"
	"strconv"

	"donorcrm/internal/domain"
)

func (a *App) LapsedDonors(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeDonor, domain.ActionRead) {
		return
	}
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			a.fail(w, r, domain.Invalid("days", "days must be a positive integer"))
			return
		}
		days = v
	}
	out, err := a.Dashboard.Dashboard(r.Context(), days)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, out)
}
