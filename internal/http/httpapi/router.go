package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"donorcrm/internal/http/handlers"
	"donorcrm/internal/infra"
	"donorcrm/internal/middleware"
)

type Options struct {
	JWTSecret       string
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	Logger          infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(opts.Logger),
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
	})

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).
			Get("/verify-certificate", app.VerifyCertificate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret))

			r.Route("/donors", func(r chi.Router) {
				r.Post("/", app.DonorCreate)
				r.Get("/default-list", app.DonorDefaultList)
				r.Get("/{name}", app.DonorGet)
				r.Delete("/{name}", app.DonorDelete)
				r.Put("/{name}/status", app.DonorSetStatus)
			})
			r.Get("/activities/{name}", app.ActivitiesGet)
			r.Get("/dashboard/lapsed-donors", app.LapsedDonors)

			r.Route("/donations", func(r chi.Router) {
				r.Post("/deductions/preview", app.DeductionPreview)
				r.Get("/{name}", app.DonationGet)
				r.Post("/{name}/deductions", app.DeductionApply)
			})
			r.Get("/fund-classes/{name}/defaults", app.FundClassDefaults)
			r.Get("/exchange-rate", app.ExchangeRate)
			r.Post("/layouts/donation-quick-entry", app.DonationQuickEntryLayout)

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/search", app.AddressSearch)
				r.Get("/{name}", app.AddressGet)
				r.Get("/{name}/deals", app.AddressDeals)
				r.Post("/{name}/contact", app.AddressSetContact)
				r.Post("/{name}/primary", app.AddressSetPrimary)
			})

			r.Get("/crm-campaigns/default-list", app.CRMCampaignDefaultList)
			r.Get("/crm-campaigns/{name}", app.CRMCampaignGet)
			r.Post("/email-campaigns/send", app.EmailCampaignsSend)
			r.Get("/email-campaigns/{name}/jobs", app.EmailCampaignJobs)
			r.Get("/email-jobs/{id}", app.EmailJobGet)
			r.Post("/email-group-members/{name}/group", app.EmailGroupMemberMove)
			r.Post("/email-groups/{name}/unsubscribe", app.EmailGroupUnsubscribe)

			r.Route("/tax-exemption-certificates", func(r chi.Router) {
				r.Post("/", app.CertificateCreate)
				r.Post("/qr-export", app.CertificateQRExport)
				r.Get("/{name}", app.CertificateGet)
				r.Get("/{name}/qr", app.CertificateQR)
				r.Get("/{name}/qr.png", app.CertificateQRPNG)
			})
		})
	})

	return r
}
