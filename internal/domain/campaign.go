package domain

import (
	"time"

	"github.com/google/uuid"
)

// Email campaign statuses.
const (
	EmailCampaignScheduled    = "Scheduled"
	EmailCampaignInProgress   = "In Progress"
	EmailCampaignCompleted    = "Completed"
	EmailCampaignUnsubscribed = "Unsubscribed"
)

// Recipient kinds an email campaign can target.
const (
	RecipientEmailGroup = "Email Group"
	RecipientLead       = "CRM Lead"
	RecipientContact    = "Contact"
	RecipientDonor      = "Donor"
)

// Email job lifecycle.
const (
	EmailJobQueued  = "QUEUED"
	EmailJobRunning = "RUNNING"
	EmailJobSent    = "SENT"
	EmailJobFailed  = "FAILED"
	EmailJobSkipped = "SKIPPED"
)

// EmailCampaign schedules a campaign's templates to a recipient.
type EmailCampaign struct {
	Name             string    `json:"name"`
	CampaignName     string    `json:"campaign_name"`
	EmailCampaignFor string    `json:"email_campaign_for"`
	Recipient        string    `json:"recipient"`
	Sender           string    `json:"sender"`
	StartDate        time.Time `json:"start_date"`
	Status           string    `json:"status"`
}

// CampaignSchedule is one entry of a campaign's sending plan.
type CampaignSchedule struct {
	Idx           int    `json:"idx"`
	EmailTemplate string `json:"email_template"`
	SendAfterDays int    `json:"send_after_days"`
}

// DueOn returns the calendar date the entry is scheduled for.
func (s CampaignSchedule) DueOn(start time.Time) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d+s.SendAfterDays, 0, 0, 0, 0, time.UTC)
}

// EmailJob is a queued email delivery.
type EmailJob struct {
	ID             uuid.UUID `json:"id"`
	EmailCampaign  string    `json:"email_campaign"`
	EmailTemplate  string    `json:"email_template"`
	Sender         string    `json:"sender"`
	RecipientEmail string    `json:"recipient_email"`
	Status         string    `json:"status"`
	Attempts       int       `json:"attempts"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EmailTemplate holds a subject and body rendered per recipient.
type EmailTemplate struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Response string `json:"response"`
}

// CRMCampaignListSettings returns the default list view for CRM campaigns.
func CRMCampaignListSettings() ListSettings {
	return ListSettings{
		Columns: []ListColumn{
			{Label: "Campaign Name", Type: "Data", Key: "campaign_name", Width: "16rem"},
			{Label: "Modified", Type: "Datetime", Key: "modified", Width: "8rem"},
			{Label: "Owner", Type: "Link", Key: "owner", Options: "User", Width: "12rem"},
		},
		Rows: []string{"name", "campaign_name", "modified", "owner"},
	}
}

// EmailJobSummary aggregates job outcomes of one email campaign.
type EmailJobSummary struct {
	Total       int64   `json:"total"`
	Sent        int64   `json:"sent"`
	Failed      int64   `json:"failed"`
	Skipped     int64   `json:"skipped"`
	SuccessRate float64 `json:"success_rate"`
}
