// Package shopify implements the order-source REST client: order
// listing, tag writes, and the fulfillment API.
package shopify

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

	"shipment-sync/internal/apperr"
	"shipment-sync/internal/model"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultPageLimit = 50
	maxPageLimit     = 250
)

// Config holds the store coordinates and credentials.
type Config struct {
	Store      string // e.g. "example.myshopify.com"
	Token      string
	APIVersion string // e.g. "2024-07"
	PageLimit  int
	Timeout    time.Duration
}

// Client talks to the Shopify Admin REST API.
type Client struct {
	baseURL string
	token   string
	limit   int
	httpc   *http.Client
}

// New returns a Client for the given store. Page limit and timeout
// fall back to defaults when non-positive.
func New(cfg Config) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	if cfg.PageLimit > maxPageLimit {
		cfg.PageLimit = maxPageLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", cfg.Store, cfg.APIVersion),
		token:   cfg.Token,
		limit:   cfg.PageLimit,
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}
}

type ordersResponse struct {
	Orders []model.Order `json:"orders"`
}

// ListOrders fetches every order visible to the sync, following
// page_info pagination until the last page.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var all []model.Order
	path := fmt.Sprintf("/orders.json?status=any&limit=%d", c.limit)

	for path != "" {
		var page ordersResponse
		header, err := c.do(ctx, http.MethodGet, "list_orders", path, nil, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Orders...)

		next := nextPageInfo(header.Get("Link"))
		if next == "" {
			break
		}
		path = fmt.Sprintf("/orders.json?limit=%d&page_info=%s", c.limit, url.QueryEscape(next))
	}
	return all, nil
}

type updateTagsRequest struct {
	Order struct {
		ID   int64  `json:"id"`
		Tags string `json:"tags"`
	} `json:"order"`
}

// UpdateTags replaces the order's raw tag field.
func (c *Client) UpdateTags(ctx context.Context, orderID int64, tags string) error {
	var body updateTagsRequest
	body.Order.ID = orderID
	body.Order.Tags = tags

	path := fmt.Sprintf("/orders/%d.json", orderID)
	_, err := c.do(ctx, http.MethodPut, "update_tags", path, body, nil)
	return err
}

type fulfillmentOrdersResponse struct {
	FulfillmentOrders []model.FulfillmentOrder `json:"fulfillment_orders"`
}

// FulfillmentOrders lists the order's fulfillment orders.
func (c *Client) FulfillmentOrders(ctx context.Context, orderID int64) ([]model.FulfillmentOrder, error) {
	var out fulfillmentOrdersResponse
	path := fmt.Sprintf("/orders/%d/fulfillment_orders.json", orderID)
	if _, err := c.do(ctx, http.MethodGet, "fulfillment_orders", path, nil, &out); err != nil {
		return nil, err
	}
	return out.FulfillmentOrders, nil
}

type createFulfillmentRequest struct {
	Fulfillment struct {
		LineItemsByFulfillmentOrder []struct {
			FulfillmentOrderID int64 `json:"fulfillment_order_id"`
		} `json:"line_items_by_fulfillment_order"`
		TrackingInfo struct {
			Number  string `json:"number"`
			Company string `json:"company"`
			URL     string `json:"url"`
		} `json:"tracking_info"`
		NotifyCustomer bool `json:"notify_customer"`
	} `json:"fulfillment"`
}

// CreateFulfillment creates one fulfillment carrying tracking info
// against an open fulfillment order.
func (c *Client) CreateFulfillment(ctx context.Context, req model.CreateFulfillment) error {
	var body createFulfillmentRequest
	body.Fulfillment.LineItemsByFulfillmentOrder = []struct {
		FulfillmentOrderID int64 `json:"fulfillment_order_id"`
	}{{FulfillmentOrderID: req.FulfillmentOrderID}}
	body.Fulfillment.TrackingInfo.Number = req.TrackingNumber
	body.Fulfillment.TrackingInfo.Company = req.CarrierName
	body.Fulfillment.TrackingInfo.URL = req.TrackingURL
	body.Fulfillment.NotifyCustomer = req.NotifyCustomer

	_, err := c.do(ctx, http.MethodPost, "create_fulfillment", "/fulfillments.json", body, nil)
	return err
}

// do issues one request and decodes the response into out when out is
// non-nil. Non-2xx statuses come back as *apperr.APIError.
func (c *Client) do(ctx context.Context, method, op, path string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("shopify %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("shopify %s: build request: %w", op, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &apperr.APIError{Service: "shopify", Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.APIError{
			Service: "shopify",
			Op:      op,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status"),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, &apperr.APIError{Service: "shopify", Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return resp.Header, nil
}

// nextPageInfo extracts the page_info cursor from a Link header, or ""
// when there is no rel="next" entry.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}
