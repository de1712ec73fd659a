// Package status defines the canonical shipment status and the
// classifier that maps carrier event codes onto it.
package status

// Status is the engine's internal shipment state, totally ordered by
// shipment progress: Processing < InTransit < Delivered.
type Status int

const (
	Processing Status = iota + 1
	InTransit
	Delivered
)

// tagPrefix namespaces status tags on the order's tag field so they
// never collide with merchant tags.
const tagPrefix = "status_"

func (s Status) String() string {
	switch s {
	case Processing:
		return "processing"
	case InTransit:
		return "in_transit"
	case Delivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Tag returns the external order-tag representation of s.
func (s Status) Tag() string { return tagPrefix + s.String() }

// Before reports whether s precedes other in shipment progress.
func (s Status) Before(other Status) bool { return s < other }

// FromTag maps an order tag back to a canonical status. ok is false
// for any tag outside the reserved status vocabulary.
func FromTag(tag string) (Status, bool) {
	switch tag {
	case Processing.Tag():
		return Processing, true
	case InTransit.Tag():
		return InTransit, true
	case Delivered.Tag():
		return Delivered, true
	default:
		return 0, false
	}
}

// Parse maps a bare status name ("in_transit") to a canonical status.
func Parse(name string) (Status, bool) {
	for _, st := range All() {
		if st.String() == name {
			return st, true
		}
	}
	return 0, false
}

// All lists every canonical status in progress order.
func All() []Status { return []Status{Processing, InTransit, Delivered} }

// Classifier maps carrier event codes to canonical statuses. Codes
// absent from the map are unrecognized and must not alter any state.
type Classifier struct {
	codes map[string]Status
}

// NewClassifier builds a classifier over the given code map. The map
// may alias several codes to the same status. An empty or nil map
// yields a classifier that recognizes nothing.
func NewClassifier(codes map[string]Status) *Classifier {
	m := make(map[string]Status, len(codes))
	for code, st := range codes {
		m[code] = st
	}
	return &Classifier{codes: m}
}

// Classify resolves a carrier event code. ok is false for codes the
// map does not know; callers must treat that as a no-op.
func (c *Classifier) Classify(eventCode string) (Status, bool) {
	st, ok := c.codes[eventCode]
	return st, ok
}

// DefaultCodeMap returns the Palletforce event-code mapping. SCOT is
// collection from the sending depot, ARRH and DELV are hub/delivery
// movements, POD is proof of delivery.
func DefaultCodeMap() map[string]Status {
	return map[string]Status{
		"SCOT": Processing,
		"ARRH": InTransit,
		"DELV": InTransit,
		"POD":  Delivered,
	}
}
