package domain

import "time"

// Contribution types and intentions that affect deductions.
const (
	ContributionDonation = "Donation"
	ContributionPledge   = "Pledge"
	IntentionZakat       = "Zakat"
	DonorIdentityKnown   = "Known"
)

// Donation is a financial contribution record with one or more payment rows.
type Donation struct {
	Name             string               `json:"name"`
	Company          string               `json:"company"`
	DonorIdentity    string               `json:"donor_identity"`
	ContributionType string               `json:"contribution_type"`
	PostingDate      time.Time            `json:"posting_date"`
	DueDate          time.Time            `json:"due_date"`
	Currency         string               `json:"currency"`
	Status           string               `json:"status"`
	CostCenter       string               `json:"donation_cost_center,omitempty"`
	DocStatus        DocStatus            `json:"docstatus"`
	Owner            string               `json:"owner,omitempty"`
	Creation         time.Time            `json:"creation"`
	Modified         time.Time            `json:"modified"`
	Payments         []PaymentDetail      `json:"payment_detail"`
	Breakeven        []DeductionBreakeven `json:"deduction_breakeven"`
}

// PaymentDetail is one payment line of a donation.
type PaymentDetail struct {
	Name                  string  `json:"name,omitempty"`
	Idx                   int     `json:"idx"`
	Donor                 string  `json:"donor"`
	FundClass             string  `json:"fund_class"`
	IntentionID           string  `json:"intention_id"`
	ModeOfPayment         string  `json:"mode_of_payment,omitempty"`
	DonationAmount        float64 `json:"donation_amount"`
	DeductionAmount       float64 `json:"deduction_amount"`
	NetAmount             float64 `json:"net_amount"`
	OutstandingAmount     float64 `json:"outstanding_amount"`
	BaseDonationAmount    float64 `json:"base_donation_amount"`
	BaseDeductionAmount   float64 `json:"base_deduction_amount"`
	BaseNetAmount         float64 `json:"base_net_amount"`
	BaseOutstandingAmount float64 `json:"base_outstanding_amount"`
}

// DeductionRule is a Deduction Details row attached to a fund class.
type DeductionRule struct {
	FundClass  string  `json:"fund_class"`
	Company    string  `json:"company"`
	Account    string  `json:"account"`
	Percentage float64 `json:"percentage"`
	MinPercent float64 `json:"min_percent"`
	MaxPercent float64 `json:"max_percent"`
	CostCenter string  `json:"cost_center,omitempty"`
	Project    string  `json:"project,omitempty"`
}

// DeductionBreakeven splits a payment's deducted percentage into an account.
type DeductionBreakeven struct {
	Idx         int     `json:"idx"`
	PaymentIdx  int     `json:"payment_idx"`
	Donor       string  `json:"donor"`
	FundClass   string  `json:"fund_class"`
	IntentionID string  `json:"intention_id"`
	Company     string  `json:"company"`
	Account     string  `json:"account"`
	Percentage  float64 `json:"percentage"`
	MinPercent  float64 `json:"min_percent"`
	MaxPercent  float64 `json:"max_percent"`
	Amount      float64 `json:"amount"`
	BaseAmount  float64 `json:"base_amount"`
	CostCenter  string  `json:"cost_center,omitempty"`
	Project     string  `json:"project,omitempty"`
}

// FundClassDefaults are the default accounts configured for a fund class.
type FundClassDefaults struct {
	FundClass         string `json:"fund_class"`
	Company           string `json:"company"`
	EquityAccount     string `json:"equity_account"`
	ReceivableAccount string `json:"receivable_account"`
	CostCenter        string `json:"cost_center"`
	ServiceArea       string `json:"service_area"`
	SubserviceArea    string `json:"subservice_area"`
	Product           string `json:"product"`
}

// DonationQuickEntryLayout is the field layout installed for the Donation quick entry form.
const DonationQuickEntryLayout = `[
  {"name": "basic_details_section", "columns": [
    {"name": "column_basic1", "fields": ["company", "donor_identity", "contribution_type"]},
    {"name": "column_basic2", "fields": ["donation_cost_center", "currency", "select_donation_type"]}
  ]},
  {"name": "payment_details_section", "columns": [
    {"name": "column_payment", "fields": ["payment_detail"]}
  ]},
  {"name": "deduction_breakeven_section", "columns": [
    {"name": "column_deduction", "fields": ["deduction_breakeven"]}
  ]}
]`
