package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shipment-sync/internal/apperr"
	"shipment-sync/internal/model"
)

func testClient(srv *httptest.Server, limit int) *Client {
	return &Client{
		baseURL: srv.URL + "/admin/api/2024-07",
		token:   "tok-1",
		limit:   limit,
		httpc:   srv.Client(),
	}
}

func TestListOrdersSinglePage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "tok-1" {
			t.Errorf("expected access token header, got %q", got)
		}
		if r.URL.Path != "/admin/api/2024-07/orders.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "any" {
			t.Errorf("expected status=any, got %q", got)
		}
		_, _ = w.Write([]byte(`{"orders":[
			{"id":1,"name":"#1001","tags":"vip, status_processing"},
			{"id":2,"name":"#1002","tags":""}
		]}`))
	}))
	defer srv.Close()

	orders, err := testClient(srv, 50).ListOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].Tags != "vip, status_processing" {
		t.Fatalf("unexpected tags %q", orders[0].Tags)
	}
}

func TestListOrdersFollowsPagination(t *testing.T) {
	t.Parallel()

	var followUps int
	srv := httptest.NewServer(nil)
	defer srv.Close()
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-07/orders.json?limit=1&page_info=cursor2>; rel="next"`, srv.URL))
			_, _ = w.Write([]byte(`{"orders":[{"id":1}]}`))
			return
		}
		followUps++
		_, _ = w.Write([]byte(`{"orders":[{"id":2}]}`))
	})

	orders, err := testClient(srv, 1).ListOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != 1 || orders[1].ID != 2 {
		t.Fatalf("expected both pages, got %v", orders)
	}
	if followUps != 1 {
		t.Fatalf("expected one follow-up page request, got %d", followUps)
	}
}

func TestUpdateTags(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/admin/api/2024-07/orders/42.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body struct {
			Order struct {
				ID   int64  `json:"id"`
				Tags string `json:"tags"`
			} `json:"order"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Order.ID != 42 || body.Order.Tags != "vip, status_delivered" {
			t.Errorf("unexpected body %+v", body)
		}
		_, _ = w.Write([]byte(`{"order":{"id":42}}`))
	}))
	defer srv.Close()

	if err := testClient(srv, 50).UpdateTags(context.Background(), 42, "vip, status_delivered"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFulfillmentOrders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-07/orders/42/fulfillment_orders.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"fulfillment_orders":[{"id":7,"status":"open"},{"id":8,"status":"closed"}]}`))
	}))
	defer srv.Close()

	fos, err := testClient(srv, 50).FulfillmentOrders(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fos) != 2 || fos[0].Status != "open" {
		t.Fatalf("unexpected fulfillment orders %v", fos)
	}
}

func TestCreateFulfillment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/api/2024-07/fulfillments.json" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		f, _ := body["fulfillment"].(map[string]any)
		if f == nil {
			t.Fatal("expected fulfillment envelope")
		}
		info, _ := f["tracking_info"].(map[string]any)
		if info["number"] != "PF123" || info["company"] != "Palletforce" {
			t.Errorf("unexpected tracking_info %v", info)
		}
		if f["notify_customer"] != true {
			t.Errorf("expected notify_customer true, got %v", f["notify_customer"])
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv, 50).CreateFulfillment(context.Background(), model.CreateFulfillment{
		FulfillmentOrderID: 7,
		TrackingNumber:     "PF123",
		CarrierName:        "Palletforce",
		TrackingURL:        "https://track.example.com/PF123",
		NotifyCustomer:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServerErrorClassification(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient(srv, 50).UpdateTags(context.Background(), 42, "vip")
	var api *apperr.APIError
	if !errors.As(err, &api) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if api.Service != "shopify" || api.Op != "update_tags" || api.Status != 500 {
		t.Fatalf("unexpected classification %+v", api)
	}
	if !apperr.Transient(err) {
		t.Fatal("expected 500 to classify as transient")
	}
}

func TestNextPageInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		link string
		want string
	}{
		{"empty", "", ""},
		{"prev_only", `<https://x/orders.json?page_info=aaa>; rel="previous"`, ""},
		{"next_only", `<https://x/orders.json?page_info=bbb>; rel="next"`, "bbb"},
		{
			"both",
			`<https://x/orders.json?page_info=aaa>; rel="previous", <https://x/orders.json?page_info=bbb>; rel="next"`,
			"bbb",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := nextPageInfo(tc.link); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
