package domain

import "time"

// CertificatePrefix starts every tax exemption certificate number.
const CertificatePrefix = "CERT-"

// CertificateNamingSeries names certificate documents.
const CertificateNamingSeries = "TEC-.YYYY.-"

// Certificate is an issued tax exemption certificate.
type Certificate struct {
	Name               string     `json:"name"`
	CertificateNumber  string     `json:"certificate_number"`
	Donor              string     `json:"donor"`
	DonorAddress       string     `json:"donor_address"`
	DonorCNICNTN       string     `json:"donor_cnic__ntn"`
	DonationDate       *time.Time `json:"donation_date"`
	DateOfIssue        *time.Time `json:"date_of_issue"`
	TotalDonation      float64    `json:"total_donation"`
	PaymentMethod      string     `json:"payment_method"`
	GeneratedTimestamp time.Time  `json:"generated_timestamp"`
}

// CertificateVerification is returned by the public verification endpoint.
type CertificateVerification struct {
	Valid       bool         `json:"valid"`
	Message     string       `json:"message,omitempty"`
	Certificate *Certificate `json:"certificate,omitempty"`
}
