package domain

import "time"

// Doctype names as they appear in references, links and permissions.
const (
	DoctypeDonor         = "Donor"
	DoctypeDonation      = "Donation"
	DoctypeLead          = "CRM Lead"
	DoctypeDeal          = "CRM Deal"
	DoctypeAddress       = "Address"
	DoctypeCRMCampaign   = "CRM Campaign"
	DoctypeEmailCampaign = "Email Campaign"
	DoctypeEmailGroup    = "Email Group"
	DoctypeCertificate   = "Tax Exemption Certificate"
	DoctypeFieldsLayout  = "CRM Fields Layout"
	DoctypeCallLog       = "CRM Call Log"
	DoctypeNote          = "FCRM Note"
	DoctypeTask          = "CRM Task"
	DoctypeComment       = "Comment"
	DoctypeCommunication = "Communication"
	DoctypeFundClass     = "Fund Class"
	DoctypeCurrencyRate  = "Currency Exchange"
)

// DocStatus mirrors the draft/submitted/cancelled lifecycle of documents.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// FieldMeta describes one field of a doctype.
type FieldMeta struct {
	Doctype   string `json:"parent"`
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
	InList    bool   `json:"in_list_view"`
	Reqd      bool   `json:"reqd"`
}

// ListColumn is one column of a default list view.
type ListColumn struct {
	Label   string `json:"label"`
	Type    string `json:"type"`
	Key     string `json:"key"`
	Options string `json:"options,omitempty"`
	Width   string `json:"width"`
}

// ListSettings is the default list view configuration for a doctype.
type ListSettings struct {
	Columns []ListColumn `json:"columns"`
	Rows    []string     `json:"rows"`
}

// KanbanSettings configures the kanban view for a doctype.
type KanbanSettings struct {
	ColumnField  string `json:"column_field"`
	TitleField   string `json:"title_field"`
	KanbanFields string `json:"kanban_fields"`
}

// MutationResult is the envelope returned by donor mutations.
type MutationResult struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message"`
	Name            string    `json:"name,omitempty"`
	RefreshRequired bool      `json:"refresh_required"`
	Timestamp       time.Time `json:"timestamp"`
}
