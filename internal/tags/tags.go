// Package tags encodes and decodes the order's free-text tag field and
// isolates the single shipment status tag from every other tag.
package tags

import (
	"strings"

	"shipment-sync/internal/status"
)

// Separator is the order source's tag delimiter.
const Separator = ", "

// Set is an ordered set of order tags. The zero value is an empty set.
// Sets are value types; mutating operations return a new Set.
type Set struct {
	tags []string
}

// Decode splits a raw tag field into a Set. Tags are separated by
// commas, surrounding whitespace is trimmed, empties are dropped, and
// duplicates keep their first position.
func Decode(raw string) Set {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return Set{tags: out}
}

// Encode serializes the set back to the order source's tag field.
// Non-status tags keep their original relative order; the status tag,
// if present, goes last.
func (s Set) Encode() string {
	out := make([]string, 0, len(s.tags))
	var statusTag string
	for _, tag := range s.tags {
		if _, ok := status.FromTag(tag); ok {
			statusTag = tag
			continue
		}
		out = append(out, tag)
	}
	if statusTag != "" {
		out = append(out, statusTag)
	}
	return strings.Join(out, Separator)
}

// Apply returns a copy of the set carrying exactly one status tag: the
// one for st. Every tag from the reserved status vocabulary is removed
// first, all other tags survive untouched. Applying the same status
// twice yields the same set as applying it once.
func (s Set) Apply(st status.Status) Set {
	out := make([]string, 0, len(s.tags)+1)
	for _, tag := range s.tags {
		if _, ok := status.FromTag(tag); ok {
			continue
		}
		out = append(out, tag)
	}
	out = append(out, st.Tag())
	return Set{tags: out}
}

// Current returns the status encoded in the set, if any. When a
// malformed field carries several status tags, the first one wins;
// the next Apply collapses them back to one.
func (s Set) Current() (status.Status, bool) {
	for _, tag := range s.tags {
		if st, ok := status.FromTag(tag); ok {
			return st, true
		}
	}
	return 0, false
}

// Has reports whether the set contains the exact tag.
func (s Set) Has(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags returns a copy of the tags in set order.
func (s Set) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len returns the number of tags in the set.
func (s Set) Len() int { return len(s.tags) }
