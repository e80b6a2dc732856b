package deduction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra"
)

// ExchangeRates resolves rates from stored currency exchange rows first and
// falls back to a remote provider, caching what the provider returns.
type ExchangeRates struct {
	store    domain.ExchangeRateRepository
	provider RateSource
	logger   infra.Logger
}

func NewExchangeRates(store domain.ExchangeRateRepository, provider RateSource, logger infra.Logger) *ExchangeRates {
	return &ExchangeRates{store: store, provider: provider, logger: logger}
}

func (e *ExchangeRates) Rate(ctx context.Context, from, to string, on time.Time) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return 1, nil
	}

	rate, err := e.store.StoredRate(ctx, from, to, on)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if e.provider == nil {
		return 0, domain.Invalid("currency", "no exchange rate from %s to %s on %s", from, to, on.Format("2006-01-02"))
	}

	rate, err = e.provider.Rate(ctx, from, to, on)
	if err != nil {
		return 0, fmt.Errorf("provider: %w", err)
	}
	if saveErr := e.store.SaveRate(ctx, from, to, on, rate); saveErr != nil {
		e.logger.Warn().Err(saveErr).Str("from", from).Str("to", to).Msg("deduction: cache exchange rate failed")
	}
	return rate, nil
}
