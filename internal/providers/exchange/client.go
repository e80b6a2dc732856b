package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"donorcrm/internal/infra"
)

// ErrRateUnavailable is returned when the upstream response has no rate for
// the requested pair.
var ErrRateUnavailable = errors.New("exchange: rate unavailable")

// Options configures the exchange rate client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *infra.Logger
	Attempts   uint
	RetryDelay time.Duration
}

// Client fetches historical exchange rates from a Frankfurter-compatible API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *infra.Logger
	attempts   uint
	delay      time.Duration
}

type ratesResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("exchange: upstream status %d: %s", e.code, e.body)
}

// NewClient constructs a client with defaults for unset options.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.frankfurter.app"
	}
	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 3
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		nop := infra.NopLogger()
		logger = &nop
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
		logger:     logger,
		attempts:   attempts,
		delay:      delay,
	}
}

// Rate returns how many units of `to` one unit of `from` buys on the date.
// Transport failures and 5xx responses are retried; 4xx responses are not.
func (c *Client) Rate(ctx context.Context, from, to string, on time.Time) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return 1, nil
	}
	return retry.DoWithData(
		func() (float64, error) {
			return c.fetch(ctx, from, to, on)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code >= http.StatusInternalServerError
			}
			return !errors.Is(err, ErrRateUnavailable)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn().Err(err).Uint("attempt", attempt+1).Str("from", from).Str("to", to).Msg("exchange: retrying rate fetch")
		}),
	)
}

func (c *Client) fetch(ctx context.Context, from, to string, on time.Time) (float64, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, on.Format("2006-01-02"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("exchange: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("exchange: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var payload ratesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("exchange: decode: %w", err)
	}
	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, from, to)
	}
	if payload.Amount > 0 && payload.Amount != 1 {
		rate = rate / payload.Amount
	}
	c.logger.Debug().Str("from", from).Str("to", to).Float64("rate", rate).Msg("exchange: fetched rate")
	return rate, nil
}
