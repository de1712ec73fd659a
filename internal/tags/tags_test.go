package tags

import (
	"testing"

	"shipment-sync/internal/status"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "vip", []string{"vip"}},
		{"comma_space", "vip, wholesale", []string{"vip", "wholesale"}},
		{"bare_comma", "vip,wholesale", []string{"vip", "wholesale"}},
		{"extra_whitespace", "  vip ,  wholesale  ", []string{"vip", "wholesale"}},
		{"empty_elements", "vip, , wholesale,", []string{"vip", "wholesale"}},
		{"duplicates_keep_first", "vip, wholesale, vip", []string{"vip", "wholesale"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Decode(tc.raw).Tags()
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestEncodeStatusTagGoesLast(t *testing.T) {
	t.Parallel()

	set := Decode("vip, status_processing, wholesale")
	if got := set.Encode(); got != "vip, wholesale, status_processing" {
		t.Fatalf("expected status tag last, got %q", got)
	}
}

func TestApplyReplacesStatusTag(t *testing.T) {
	t.Parallel()

	set := Decode("vip, status_processing")
	got := set.Apply(status.Delivered).Encode()
	if got != "vip, status_delivered" {
		t.Fatalf("expected %q, got %q", "vip, status_delivered", got)
	}
}

func TestApplyInsertsWhenAbsent(t *testing.T) {
	t.Parallel()

	set := Decode("vip")
	got := set.Apply(status.InTransit).Encode()
	if got != "vip, status_in_transit" {
		t.Fatalf("expected %q, got %q", "vip, status_in_transit", got)
	}
}

func TestApplyCollapsesMultipleStatusTags(t *testing.T) {
	t.Parallel()

	set := Decode("status_processing, vip, status_in_transit")
	out := set.Apply(status.Delivered)

	count := 0
	for _, tag := range out.Tags() {
		if _, ok := status.FromTag(tag); ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one status tag, got %d in %v", count, out.Tags())
	}
	if !out.Has("vip") {
		t.Fatal("expected non-status tags preserved")
	}
}

// Exactly one status tag comes out of Apply for any input, and the
// non-status tags survive untouched.
func TestApplySingleStatusInvariant(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"vip",
		"status_delivered",
		"vip, status_processing, wholesale",
		"status_processing, status_in_transit, status_delivered",
	}
	for _, raw := range inputs {
		for _, st := range status.All() {
			out := Decode(raw).Apply(st)

			statusTags := 0
			for _, tag := range out.Tags() {
				if _, ok := status.FromTag(tag); ok {
					statusTags++
				}
			}
			if statusTags != 1 {
				t.Errorf("Apply(%q, %v): expected 1 status tag, got %d", raw, st, statusTags)
			}

			for _, tag := range Decode(raw).Tags() {
				if _, ok := status.FromTag(tag); ok {
					continue
				}
				if !out.Has(tag) {
					t.Errorf("Apply(%q, %v): lost non-status tag %q", raw, st, tag)
				}
			}
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	t.Parallel()

	set := Decode("vip, status_processing")
	once := set.Apply(status.InTransit)
	twice := once.Apply(status.InTransit)

	if once.Encode() != twice.Encode() {
		t.Fatalf("expected idempotent apply, got %q then %q", once.Encode(), twice.Encode())
	}
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	if _, ok := Decode("vip").Current(); ok {
		t.Fatal("expected no status for non-status tags")
	}

	st, ok := Decode("vip, status_in_transit").Current()
	if !ok || st != status.InTransit {
		t.Fatalf("expected in_transit, got %v ok=%v", st, ok)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	raw := "vip, wholesale, status_delivered"
	if got := Decode(raw).Encode(); got != raw {
		t.Fatalf("expected %q, got %q", raw, got)
	}
}
