package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if got := d.String(); got != "2026-03-15" {
		t.Errorf("String() = %q, want %q", got, "2026-03-15")
	}

	if _, err := ParseDate("15/03/2026"); err == nil {
		t.Error("ParseDate accepted a non-ISO date")
	}
}

func TestDateComparisons(t *testing.T) {
	a := NewDate(2026, time.March, 1)
	b := NewDate(2026, time.March, 2)

	if !a.Before(b) {
		t.Error("a.Before(b) = false, want true")
	}
	if a.After(b) {
		t.Error("a.After(b) = true, want false")
	}
	if a.Before(a) || a.After(a) {
		t.Error("a compared against itself should be neither before nor after")
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2026, time.February, 27)
	got := d.AddDays(2)
	if got.String() != "2026-03-01" {
		t.Errorf("AddDays(2) = %s, want 2026-03-01", got)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, time.August, 28)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `"2026-08-28"` {
		t.Errorf("Marshal = %s, want %q", data, `"2026-08-28"`)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip changed the date: got %s, want %s", back, d)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2026, time.May, 5, 13, 45, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if d.String() != "2026-05-05" {
		t.Errorf("Scan dropped to %s, want 2026-05-05", d)
	}

	if err := d.Scan(42); err == nil {
		t.Error("Scan accepted an int")
	}
}
