package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/dolores-ai/st1ne-polymarket-assistant/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second

	defaultPastResultsURL = "https://polymarket.com/api/past-results"
	defaultGammaURL       = "https://gamma-api.polymarket.com/events"
	defaultPricesURL      = "https://clob.polymarket.com/prices-history"
	defaultMidpointURL    = "https://clob.polymarket.com/midpoint"
)

var (
	// ErrNoMarket is returned when no Up/Down market exists for a period.
	ErrNoMarket = errors.New("no market for period")

	// ErrNotResolved is returned while a period's outcome is still pending.
	ErrNotResolved = errors.New("period not resolved")
)

// Client fetches periods, token IDs and price histories from the Polymarket
// REST APIs.
type Client struct {
	pastResultsURL string
	gammaURL       string
	pricesURL      string
	midpointURL    string

	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithMaxRetries sets maximum retry attempts per request.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBaseURLs overrides the API endpoints.
func WithBaseURLs(pastResults, gamma, prices string) ClientOption {
	return func(c *Client) {
		c.pastResultsURL = pastResults
		c.gammaURL = gamma
		c.pricesURL = prices
	}
}

// WithMidpointURL overrides the CLOB midpoint endpoint.
func WithMidpointURL(midpoint string) ClientOption {
	return func(c *Client) {
		c.midpointURL = midpoint
	}
}

// NewClient creates a REST client with default endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		pastResultsURL: defaultPastResultsURL,
		gammaURL:       defaultGammaURL,
		pricesURL:      defaultPricesURL,
		midpointURL:    defaultMidpointURL,
		client:         &http.Client{Timeout: DefaultTimeout},
		maxRetries:     DefaultMaxRetries,
		retryDelay:     DefaultRetryDelay,
		maxDelay:       DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET with retries and exponential backoff, decoding the
// JSON body into result.
func (c *Client) get(ctx context.Context, baseURL string, params url.Values, result interface{}) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

type pastResultsResponse struct {
	Data struct {
		Results []pastResult `json:"results"`
	} `json:"data"`
}

type pastResult struct {
	StartTime string `json:"startTime"`
	Outcome   string `json:"outcome"`
}

// ResolvedPeriods fetches the settled periods of the last `hours` hours.
// The past-results endpoint returns a short window of results ending before
// currentEventStartTime, so the range is swept in 15-minute steps and
// deduplicated. Unresolved entries are dropped.
func (c *Client) ResolvedPeriods(ctx context.Context, coin string, hours int) ([]*domain.Period, error) {
	now := time.Now().UTC()
	seen := make(map[int64]bool)
	var periods []*domain.Period

	steps := hours*4 + 1
	for step := 0; step < steps; step++ {
		at := now.Add(-time.Duration(hours) * time.Hour).Add(time.Duration(step) * 15 * time.Minute)
		aligned := domain.AlignPeriodTs(at.Unix())

		params := url.Values{}
		params.Set("symbol", coin)
		params.Set("variant", "fifteen")
		params.Set("assetType", "crypto")
		params.Set("currentEventStartTime", time.Unix(aligned, 0).UTC().Format("2006-01-02T15:04:05Z"))

		var resp pastResultsResponse
		if err := c.get(ctx, c.pastResultsURL, params, &resp); err != nil {
			// One failed window loses a few periods, not the whole sweep.
			continue
		}

		for _, r := range resp.Data.Results {
			p, err := parsePastResult(coin, r)
			if err != nil || seen[p.StartTs] {
				continue
			}
			seen[p.StartTs] = true
			periods = append(periods, p)
		}
	}

	sort.Slice(periods, func(i, j int) bool { return periods[i].StartTs < periods[j].StartTs })
	return periods, nil
}

func parsePastResult(coin string, r pastResult) (*domain.Period, error) {
	st, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse startTime %q: %w", r.StartTime, err)
	}
	var outcome domain.PeriodOutcome
	switch r.Outcome {
	case "up":
		outcome = domain.OutcomeUp
	case "down":
		outcome = domain.OutcomeDown
	default:
		return nil, fmt.Errorf("outcome %q pending", r.Outcome)
	}
	startTs := domain.AlignPeriodTs(st.Unix())
	return &domain.Period{
		Coin:      coin,
		StartTs:   startTs,
		EndTs:     startTs + domain.PeriodSeconds,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type gammaEvent struct {
	Markets []struct {
		ClobTokenIds string `json:"clobTokenIds"`
	} `json:"markets"`
}

// TokenIDs resolves the Up and Down CLOB token IDs of a period via its
// gamma slug ({coin}-updown-15m-{ts}).
func (c *Client) TokenIDs(ctx context.Context, coin string, periodTs int64) (string, string, error) {
	params := url.Values{}
	params.Set("slug", PeriodSlug(coin, periodTs))
	params.Set("limit", "1")

	var events []gammaEvent
	if err := c.get(ctx, c.gammaURL, params, &events); err != nil {
		return "", "", err
	}
	if len(events) == 0 || len(events[0].Markets) == 0 {
		return "", "", ErrNoMarket
	}

	// clobTokenIds is a JSON array encoded as a string: ["up","down"].
	var ids []string
	if err := json.Unmarshal([]byte(events[0].Markets[0].ClobTokenIds), &ids); err != nil {
		return "", "", fmt.Errorf("unmarshal clobTokenIds: %w", err)
	}
	if len(ids) < 2 {
		return "", "", ErrNoMarket
	}
	return ids[0], ids[1], nil
}

// PeriodSlug builds the gamma event slug of a period.
func PeriodSlug(coin string, periodTs int64) string {
	return fmt.Sprintf("%s-updown-15m-%d", coin, periodTs)
}

type pricesHistoryResponse struct {
	History []struct {
		T int64   `json:"t"`
		P float64 `json:"p"`
	} `json:"history"`
}

// PriceHistory fetches the minute-fidelity price history of a token over a
// period and converts it to a snapshot series with minutes relative to the
// period start.
func (c *Client) PriceHistory(ctx context.Context, tokenID string, periodTs int64) (*domain.PriceSeries, error) {
	params := url.Values{}
	params.Set("market", tokenID)
	params.Set("startTs", strconv.FormatInt(periodTs, 10))
	params.Set("endTs", strconv.FormatInt(periodTs+domain.PeriodSeconds, 10))
	params.Set("fidelity", "1")

	var resp pricesHistoryResponse
	if err := c.get(ctx, c.pricesURL, params, &resp); err != nil {
		return nil, err
	}

	series := &domain.PriceSeries{PeriodTs: periodTs}
	for _, h := range resp.History {
		series.Points = append(series.Points, &domain.PriceSnapshot{
			Minute:     float64(h.T-periodTs) / 60.0,
			PriceUp:    h.P,
			ObservedAt: time.Unix(h.T, 0).UTC(),
		})
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Minute < series.Points[j].Minute
	})
	return series, nil
}

type midpointResponse struct {
	Mid string `json:"mid"`
}

// Midpoint fetches the current midpoint price of a token. Used as a REST
// fallback while the websocket has not delivered a quote yet.
func (c *Client) Midpoint(ctx context.Context, tokenID string) (float64, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	var resp midpointResponse
	if err := c.get(ctx, c.midpointURL, params, &resp); err != nil {
		return 0, err
	}
	mid, err := strconv.ParseFloat(resp.Mid, 64)
	if err != nil {
		return 0, fmt.Errorf("parse midpoint %q: %w", resp.Mid, err)
	}
	return mid, nil
}

// Outcome resolves the settled outcome of a period. Results are published
// with a reporting delay, so the query anchors on the current period and
// scans backwards. ErrNotResolved means try again later.
func (c *Client) Outcome(ctx context.Context, coin string, periodTs int64) (domain.PeriodOutcome, error) {
	current := domain.AlignPeriodTs(time.Now().UTC().Unix())

	params := url.Values{}
	params.Set("symbol", coin)
	params.Set("variant", "fifteen")
	params.Set("assetType", "crypto")
	params.Set("currentEventStartTime", time.Unix(current, 0).UTC().Format("2006-01-02T15:04:05Z"))

	var resp pastResultsResponse
	if err := c.get(ctx, c.pastResultsURL, params, &resp); err != nil {
		return domain.OutcomeUnresolved, err
	}

	for _, r := range resp.Data.Results {
		st, err := time.Parse(time.RFC3339, r.StartTime)
		if err != nil {
			continue
		}
		if domain.AlignPeriodTs(st.Unix()) != periodTs {
			continue
		}
		switch r.Outcome {
		case "up":
			return domain.OutcomeUp, nil
		case "down":
			return domain.OutcomeDown, nil
		}
	}
	return domain.OutcomeUnresolved, ErrNotResolved
}
