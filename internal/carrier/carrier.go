// Package carrier implements the Palletforce tracking query client.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shipment-sync/internal/apperr"
	"shipment-sync/internal/model"
)

const defaultTimeout = 15 * time.Second

// Config holds the carrier endpoint and credentials.
type Config struct {
	URL       string
	AccessKey string
	Timeout   time.Duration
}

// Client queries the carrier tracking API. One request per tracking
// number; responses are request/response, never streamed.
type Client struct {
	cfg   Config
	httpc *http.Client
}

// New returns a Client for the given endpoint. A non-positive timeout
// falls back to a default.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

type trackingRequest struct {
	AccessKey      string `json:"accessKey"`
	TrackingNumber string `json:"trackingNumber"`
}

type trackingResponse struct {
	TrackingData []model.TrackingEvent `json:"trackingData"`
}

// TrackingEvents performs one tracking query for the consignment. The
// carrier returns events in chronological order, last-is-latest; an
// absent trackingData array means no events yet and is not an error.
func (c *Client) TrackingEvents(ctx context.Context, trackingNumber string) ([]model.TrackingEvent, error) {
	body, err := json.Marshal(trackingRequest{
		AccessKey:      c.cfg.AccessKey,
		TrackingNumber: trackingNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("carrier tracking: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("carrier tracking: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &apperr.APIError{Service: "carrier", Op: "tracking", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.APIError{
			Service: "carrier",
			Op:      "tracking",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status"),
		}
	}

	var out trackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &apperr.APIError{Service: "carrier", Op: "tracking", Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.TrackingData, nil
}
