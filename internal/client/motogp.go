package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Marco204391/fanta-motogp-sub001/internal/metrics"
	"github.com/Marco204391/fanta-motogp-sub001/internal/models"
	"github.com/Marco204391/fanta-motogp-sub001/internal/syncerr"

	"github.com/rs/zerolog/log"
)

// Client is the MotoGP results API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new MotoGP results API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	// Create rate limiter (max 10 concurrent requests)
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     baseURL,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request to the results API with retry logic and rate limiting
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		status, body, err := c.doAttempt(ctx, path, params)
		if err != nil {
			// Retry on network errors and timeouts
			if !errors.Is(err, syncerr.ErrUpstreamUnavailable) {
				return nil, err
			}
			lastErr = err
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch status {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("status", status).
				Int("size", len(body)).
				Msg("API request successful")
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Retryable errors
			lastErr = fmt.Errorf("%w: status %d: %s", syncerr.ErrUpstreamUnavailable, status, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", status).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", syncerr.ErrNotFound, url)

		default:
			// Other errors - don't retry
			return nil, fmt.Errorf("%w: status %d: %s", syncerr.ErrUpstreamUnavailable, status, string(body))
		}
	}

	return nil, lastErr
}

// doAttempt performs one rate-limited request. The semaphore token and
// the response body are released before returning, so a retrying caller
// holds at most one token at a time.
func (c *Client) doAttempt(ctx context.Context, path string, params map[string]string) (int, []byte, error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FantaMotoGP-Sync/1.0")

	// Add query parameters
	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(path, "error", time.Since(requestStart).Seconds())
		return 0, nil, fmt.Errorf("%w: %v", syncerr.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.RecordAPICall(path, strconv.Itoa(resp.StatusCode), time.Since(requestStart).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading response body: %v", syncerr.ErrUpstreamUnavailable, err)
	}

	return resp.StatusCode, body, nil
}

// FetchRiders fetches the current rider roster
func (c *Client) FetchRiders(ctx context.Context) ([]models.RiderInput, error) {
	body, err := c.get(ctx, "riders", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch riders: %w", err)
	}

	var riders []models.RiderInput
	if err := json.Unmarshal(body, &riders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal riders: %w", err)
	}

	return riders, nil
}

// FetchSeasons fetches the season list
func (c *Client) FetchSeasons(ctx context.Context) ([]models.SeasonInput, error) {
	body, err := c.get(ctx, "results/seasons", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasons: %w", err)
	}

	var seasons []models.SeasonInput
	if err := json.Unmarshal(body, &seasons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seasons: %w", err)
	}

	return seasons, nil
}

// FetchEvents fetches the events of a season
func (c *Client) FetchEvents(ctx context.Context, seasonID string, finishedOnly bool) ([]models.EventInput, error) {
	params := map[string]string{"seasonUuid": seasonID}
	if finishedOnly {
		params["isFinished"] = "true"
	}

	body, err := c.get(ctx, "results/events", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	var events []models.EventInput
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %w", err)
	}

	return events, nil
}

// FetchSessions fetches the session list for an (event, category) pair
func (c *Client) FetchSessions(ctx context.Context, eventID, categoryID string) ([]models.SessionInput, error) {
	params := map[string]string{
		"eventUuid":    eventID,
		"categoryUuid": categoryID,
	}

	body, err := c.get(ctx, "results/sessions", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	var sessions []models.SessionInput
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	return sessions, nil
}

// FetchClassification fetches the classification of a session
func (c *Client) FetchClassification(ctx context.Context, sessionID string) (*models.ClassificationInput, error) {
	path := fmt.Sprintf("results/session/%s/classification", sessionID)

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch classification: %w", err)
	}

	var classification models.ClassificationInput
	if err := json.Unmarshal(body, &classification); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classification: %w", err)
	}

	return &classification, nil
}
