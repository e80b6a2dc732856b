package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"donorcrm/internal/domain"
)

// certificateRequest accepts plain dates for the date fields.
type certificateRequest struct {
	Name              string  `json:"name"`
	CertificateNumber string  `json:"certificate_number"`
	Donor             string  `json:"donor"`
	DonorAddress      string  `json:"donor_address"`
	DonorCNICNTN      string  `json:"donor_cnic__ntn"`
	DonationDate      string  `json:"donation_date"`
	DateOfIssue       string  `json:"date_of_issue"`
	TotalDonation     float64 `json:"total_donation"`
	PaymentMethod     string  `json:"payment_method"`
}

type qrExportRequest struct {
	Names []string `json:"names"`
}

func optionalDate(field, raw string) (*time.Time, error) {
	t, err := parseDate(field, raw)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func (a *App) CertificateCreate(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCertificate, domain.ActionWrite) {
		return
	}
	var req certificateRequest
	if !a.decode(w, r, &req) {
		return
	}
	donationDate, err := optionalDate("donation_date", req.DonationDate)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	issued, err := optionalDate("date_of_issue", req.DateOfIssue)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	cert, err := a.Certificates.Create(r.Context(), domain.Certificate{
		Name:              req.Name,
		CertificateNumber: req.CertificateNumber,
		Donor:             req.Donor,
		DonorAddress:      req.DonorAddress,
		DonorCNICNTN:      req.DonorCNICNTN,
		DonationDate:      donationDate,
		DateOfIssue:       issued,
		TotalDonation:     req.TotalDonation,
		PaymentMethod:     req.PaymentMethod,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, cert)
}

func (a *App) CertificateGet(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCertificate, domain.ActionRead) {
		return
	}
	cert, err := a.Certificates.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, cert)
}

func (a *App) CertificateQR(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCertificate, domain.ActionRead) {
		return
	}
	uri, err := a.Certificates.QRDataURI(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"qr_code": uri})
}

func (a *App) CertificateQRPNG(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCertificate, domain.ActionRead) {
		return
	}
	png, err := a.Certificates.QRCode(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (a *App) CertificateQRExport(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, domain.DoctypeCertificate, domain.ActionRead) {
		return
	}
	var req qrExportRequest
	if !a.decode(w, r, &req) {
		return
	}
	archive, err := a.Certificates.ExportQRCodes(r.Context(), req.Names)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	filename := "certificate-qr-" + a.now().Format("20060102-150405") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// VerifyCertificate is public; an unknown number is a normal response.
func (a *App) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	res, err := a.Certificates.Verify(r.Context(), r.URL.Query().Get("cert_no"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !res.Valid {
		res.Message = a.translate(r, res.Message)
	}
	a.json(w, http.StatusOK, res)
}
