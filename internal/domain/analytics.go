package domain

import "time"

// LapsedDonor is an active donor whose latest submitted donation is older
// than the inactivity window.
type LapsedDonor struct {
	DonorID          string    `json:"donor_id"`
	DonorName        string    `json:"donor_name"`
	LastDonationDate time.Time `json:"last_donation_date"`
	TotalDonations   float64   `json:"total_donations"`
}

// LapsedDashboard aggregates the lapsed-donor analytics.
type LapsedDashboard struct {
	TotalActiveDonors int64         `json:"total_active_donors"`
	TotalLapsedDonors int64         `json:"total_lapsed_donors"`
	ReEngagementRate  float64       `json:"re_engagement_rate"`
	LapsedDonorsList  []LapsedDonor `json:"lapsed_donors_list"`
	WindowDays        int           `json:"window_days"`
}
