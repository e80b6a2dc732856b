package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"donorcrm/internal/activities"
	"donorcrm/internal/adapter/repo"
	"donorcrm/internal/address"
	"donorcrm/internal/campaign"
	"donorcrm/internal/certificate"
	"donorcrm/internal/deduction"
	"donorcrm/internal/docmeta"
	"donorcrm/internal/donor"
	"donorcrm/internal/http/handlers"
	httpapi "donorcrm/internal/http/httpapi"
	"donorcrm/internal/infra"
	"donorcrm/internal/infra/credentials"
	"donorcrm/internal/infra/geoip"
	"donorcrm/internal/lapsed"
	"donorcrm/internal/layout"
	"donorcrm/internal/middleware"
	"donorcrm/internal/naming"
	"donorcrm/internal/providers/exchange"
	"donorcrm/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	creds := credentials.NewStore(runner)

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to prepare storage")
	}
	defer files.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
		if c, ok := resolver.(io.Closer); ok {
			defer c.Close()
		}
	}

	apiKey, err := creds.Resolve(ctx, credentials.ProviderExchange, "")
	if err != nil {
		logger.Warn().Err(err).Msg("exchange api key lookup failed")
	}
	rates := deduction.NewExchangeRates(
		repo.NewExchangeRateRepository(runner),
		exchange.NewClient(exchange.Options{BaseURL: cfg.ExchangeRateURL, APIKey: apiKey, Logger: &logger}),
		logger,
	)

	names := naming.NewGenerator(runner)
	meta := docmeta.NewStore(runner)
	donations := repo.NewDonationRepository(runner)
	deductions := repo.NewDeductionRepository(runner)
	donors := donor.NewService(runner, names, meta, logger)
	jobs := repo.NewEmailJobRepository(runner)

	app := &handlers.App{
		Logger: logger,
		DB:     pool,
		Donors: donors,
		Activities: activities.NewService(
			repo.NewActivityRepository(runner), donations, donors,
			activities.Defaults{Company: cfg.DefaultCompany, Currency: cfg.DefaultCurrency},
			logger,
		),
		Dashboard:    lapsed.NewService(repo.NewAnalyticsRepository(runner), cfg.LapsedDonorDays),
		Addresses:    address.NewService(runner),
		Deductions:   deduction.NewService(deduction.NewCalculator(deductions, rates), donations, deductions),
		Rates:        rates,
		Donations:    donations,
		Layouts:      layout.NewService(runner, logger),
		Docs:         meta,
		Dispatcher:   campaign.NewDispatcher(runner, jobs, logger),
		Jobs:         jobs,
		Groups:       campaign.NewGroups(runner),
		Certificates: certificate.NewService(repo.NewCertificateRepository(runner), names, files, cfg.SiteURL, logger),
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(ctx, cfg, router)
	logger.Info().Str("addr", server.Addr()).Msg("api listening")
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
