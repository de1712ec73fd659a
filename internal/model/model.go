// Package model defines the order, fulfillment, and tracking payloads
// exchanged with the external collaborators. It keeps wire-level types
// in one place for reuse.
package model

// Order is the order-source record the engine reconciles. The order
// source owns it; the engine reads the current state each run and
// requests mutations, never caching across runs.
type Order struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Tags           string          `json:"tags"` // raw tag field, tags separated by ", "
	Fulfillments   []Fulfillment   `json:"fulfillments,omitempty"`
	NoteAttributes []NoteAttribute `json:"note_attributes,omitempty"`
}

// Fulfillment is a shipment record already present on an order.
type Fulfillment struct {
	ID             int64  `json:"id"`
	TrackingNumber string `json:"tracking_number"`
}

// NoteAttribute is a free-form key/value pair on an order. Some stores
// stash the carrier consignment number here instead of on a fulfillment.
type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FulfillmentOrder is a unit of an order eligible to be shipped. A
// fulfillment carrying tracking can only be created against an open one.
type FulfillmentOrder struct {
	ID     int64  `json:"id"`
	Status string `json:"status"` // "open", "closed", ...
}

// FulfillmentOrderOpen is the status value of a fulfillment order that
// still accepts a fulfillment.
const FulfillmentOrderOpen = "open"

// TrackingEvent is one carrier handling milestone. The carrier returns
// events in chronological order; the last element is the latest.
type TrackingEvent struct {
	EventCode      string `json:"eventCode"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

// CreateFulfillment binds a carrier tracking record to an open
// fulfillment order.
type CreateFulfillment struct {
	FulfillmentOrderID int64
	TrackingNumber     string
	CarrierName        string
	TrackingURL        string
	NotifyCustomer     bool
}
