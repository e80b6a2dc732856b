package domain

import "time"

// Donor statuses.
const (
	DonorStatusNew     = "New"
	DonorStatusActive  = "Active"
	DonorStatusBlocked = "Blocked"
)

// Identification types accepted for donors.
const (
	IdentificationCNIC     = "CNIC"
	IdentificationNTN      = "NTN"
	IdentificationPassport = "Passport"
	IdentificationOthers   = "Others"
)

// DefaultDonorNamingSeries is used when a branch-scoped series cannot be resolved.
const DefaultDonorNamingSeries = "DONOR-.YYYY.-"

// Donor represents an individual or organization that gives donations.
type Donor struct {
	Name               string    `json:"name"`
	NamingSeries       string    `json:"naming_series,omitempty"`
	DonorName          string    `json:"donor_name"`
	Salutation         string    `json:"salutation,omitempty"`
	FirstName          string    `json:"first_name,omitempty"`
	MiddleName         string    `json:"middle_name,omitempty"`
	LastName           string    `json:"last_name,omitempty"`
	Organization       string    `json:"organization,omitempty"`
	Title              string    `json:"title,omitempty"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	MobileNo           string    `json:"mobile_no,omitempty"`
	DonorOwner         string    `json:"donor_owner,omitempty"`
	Status             string    `json:"status"`
	DonorType          string    `json:"donor_type,omitempty"`
	Department         string    `json:"department,omitempty"`
	IdentificationType string    `json:"identification_type,omitempty"`
	CNIC               string    `json:"cnic,omitempty"`
	Branch             string    `json:"branch,omitempty"`
	BranchAbbreviation string    `json:"branch_abbreviation,omitempty"`
	Country            string    `json:"country,omitempty"`
	Image              string    `json:"image,omitempty"`
	Unsubscribed       bool      `json:"unsubscribed"`
	Owner              string    `json:"owner,omitempty"`
	Creation           time.Time `json:"creation"`
	Modified           time.Time `json:"modified"`
}

// IsBlocked reports whether the donor may not receive new deduction rows.
func (d Donor) IsBlocked() bool {
	return d.Status == DonorStatusBlocked
}

// DonorListSettings returns the default list view for donors.
func DonorListSettings() ListSettings {
	return ListSettings{
		Columns: []ListColumn{
			{Label: "Donor Name", Type: "Data", Key: "donor_name", Width: "16rem"},
			{Label: "Organization", Type: "Data", Key: "organization", Width: "16rem"},
			{Label: "Email", Type: "Data", Key: "email", Width: "16rem"},
			{Label: "Mobile No", Type: "Data", Key: "mobile_no", Width: "12rem"},
			{Label: "Donor Owner", Type: "Link", Key: "donor_owner", Options: "User", Width: "12rem"},
			{Label: "Status", Type: "Link", Key: "status", Options: "Donor Status", Width: "8rem"},
			{Label: "Donor Type", Type: "Link", Key: "donor_type", Options: "Donor Type", Width: "12rem"},
			{Label: "Department", Type: "Link", Key: "department", Options: "Department", Width: "12rem"},
			{Label: "Modified", Type: "Datetime", Key: "modified", Width: "8rem"},
		},
		Rows: []string{"name", "donor_name", "organization", "email", "mobile_no", "donor_owner", "status", "donor_type", "department", "modified"},
	}
}

// DonorKanbanSettings returns the default kanban configuration for donors.
func DonorKanbanSettings() KanbanSettings {
	return KanbanSettings{
		ColumnField:  "status",
		TitleField:   "donor_name",
		KanbanFields: `["organization", "email", "mobile_no", "_assign", "modified"]`,
	}
}

// DonorNonFilterableFields lists fields hidden from list filters.
var DonorNonFilterableFields = []string{"converted", "image", "sla_creation"}
