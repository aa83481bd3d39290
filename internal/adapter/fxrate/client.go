package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/telemetry"
)

// TooManyRequestsError represents rate limiting signal from the rate service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Unwrap lets callers treat throttling as an unavailable rate.
func (e TooManyRequestsError) Unwrap() error {
	return domainErrors.ErrRateUnavailable
}

// HTTPClient resolves conversion rates from an HTTP rate service.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// response mirrors JSON payload from the rate service.
type response struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// NewHTTPClient creates rate client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse fx rates url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("fx rates url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

// Rate returns how many units of to one unit of from buys.
func (c *HTTPClient) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/rates/", from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	telemetry.InjectHTTP(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domainErrors.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var data response
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return decimal.Zero, fmt.Errorf("decode rate: %w", err)
		}
		if !data.Rate.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: non-positive rate %s for %s/%s", domainErrors.ErrRateUnavailable, data.Rate, from, to)
		}
		return data.Rate, nil
	case http.StatusNotFound:
		return decimal.Zero, fmt.Errorf("%w: no rate for %s/%s", domainErrors.ErrRateUnavailable, from, to)
	case http.StatusTooManyRequests:
		return decimal.Zero, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("fx rate request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return decimal.Zero, fmt.Errorf("%w: %s", domainErrors.ErrRateUnavailable, resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
