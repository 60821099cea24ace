package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"saubio/models"
)

const defaultTimeout = 10 * time.Second

// APIError is returned when the marketplace API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace api returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the marketplace backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. A nil httpClient gets a default with a timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchSuggestions asks smart matching for providers fitting the request.
func (c *Client) FetchSuggestions(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode suggestion request: %w", err)
	}

	out := &models.SuggestionResult{}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/smart-match/suggestions", bytes.NewReader(body), out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBookings returns the booking records updated after updatedSince.
// A zero updatedSince lists everything.
func (c *Client) ListBookings(ctx context.Context, updatedSince time.Time) ([]models.BookingRequest, error) {
	parsed, err := url.Parse(c.baseURL + "/bookings")
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if !updatedSince.IsZero() {
		query := parsed.Query()
		query.Set("updatedSince", updatedSince.UTC().Format(time.RFC3339))
		parsed.RawQuery = query.Encode()
	}

	var out []models.BookingRequest
	if err := c.doJSON(ctx, http.MethodGet, parsed.String(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}
