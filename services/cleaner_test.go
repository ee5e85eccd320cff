package services

import (
	"testing"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func cleanerProperty() models.Property {
	return models.Property{
		ID:   1,
		Name: "Lakeside",
		Categories: []models.Category{
			cabinCategory(1, 2, 3),
		},
	}
}

func TestCleanerNormaliseText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  Smith  ", "Smith"},
		{"Mr\t\tJohn   Smith", "Mr John Smith"},
		{"", ""},
		{"\n", ""},
	}

	for _, tt := range tests {
		got := normaliseText(tt.raw)
		if got != tt.want {
			t.Errorf("normaliseText(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerDropsMissingUnit(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawReservation{
		{ID: 1, UnitID: 0, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "Confirmed"},
		{ID: 2, UnitID: 1, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "Confirmed"},
	}

	cleaned, skipped := c.Clean(cleanerProperty(), raw)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 reservation after dropping missing unit, got %d", len(cleaned))
	}
	if len(skipped) != 1 || skipped[0].ReservationID != 1 {
		t.Errorf("expected reservation 1 reported as skipped, got %+v", skipped)
	}
}

func TestCleanerDropsMalformedDates(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawReservation{
		{ID: 1, UnitID: 1, Arrival: "15/10/2026", Departure: "2026-10-17"},
		{ID: 2, UnitID: 1, Arrival: "2026-10-15", Departure: "soon"},
		{ID: 3, UnitID: 1, Arrival: "2026-10-17", Departure: "2026-10-17"},
		{ID: 4, UnitID: 1, Arrival: "2026-10-18", Departure: "2026-10-16"},
		{ID: 5, UnitID: 1, Arrival: "2026-10-15T14:00:00", Departure: "2026-10-16 10:00"},
	}

	cleaned, skipped := c.Clean(cleanerProperty(), raw)
	if len(cleaned) != 1 || cleaned[0].ID != 5 {
		t.Fatalf("expected only reservation 5 to survive, got %+v", cleaned)
	}
	if len(skipped) != 4 {
		t.Errorf("expected 4 skipped records, got %d", len(skipped))
	}
	if n := cleaned[0].Nights(); n != 1 {
		t.Errorf("expected 1 night, got %d", n)
	}
}

func TestCleanerDeduplicatesID(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawReservation{
		{ID: 7, UnitID: 1, Arrival: "2026-10-15", Departure: "2026-10-17", GuestLabel: "First"},
		{ID: 7, UnitID: 2, Arrival: "2026-10-15", Departure: "2026-10-17", GuestLabel: "Second"},
	}

	cleaned, skipped := c.Clean(cleanerProperty(), raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 reservation after dedup, got %d", len(cleaned))
	}
	if cleaned[0].GuestLabel != "First" {
		t.Errorf("expected first occurrence to win, got %q", cleaned[0].GuestLabel)
	}
	if len(skipped) != 0 {
		t.Errorf("duplicates are not reported as skipped, got %d", len(skipped))
	}
}

func TestCleanerInfersCategoryAndStatus(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawReservation{
		{ID: 1, UnitID: 2, Arrival: "2026-10-15", Departure: "2026-10-17", Status: " confirmed ", GuestLabel: " Jones "},
		{ID: 2, UnitID: 3, CategoryID: 99, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "Out of Order"},
		{ID: 3, UnitID: 1, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "waitlist", Fixed: true},
	}

	cleaned, _ := c.Clean(cleanerProperty(), raw)
	if len(cleaned) != 3 {
		t.Fatalf("expected 3 reservations, got %d", len(cleaned))
	}

	if cleaned[0].CategoryID != 10 {
		t.Errorf("expected category inferred from unit, got %d", cleaned[0].CategoryID)
	}
	if cleaned[0].Status != models.StatusConfirmed {
		t.Errorf("expected Confirmed, got %s", cleaned[0].Status)
	}
	if cleaned[0].GuestLabel != "Jones" {
		t.Errorf("expected trimmed guest label, got %q", cleaned[0].GuestLabel)
	}
	if cleaned[1].CategoryID != 10 {
		t.Errorf("expected the unit's category to override the declared one, got %d", cleaned[1].CategoryID)
	}
	if cleaned[1].Status != models.StatusMaintenance {
		t.Errorf("expected Maintenance, got %s", cleaned[1].Status)
	}
	if cleaned[2].Status != models.StatusOther || !cleaned[2].Fixed {
		t.Errorf("expected fixed Other reservation, got %+v", cleaned[2])
	}
}

func TestCleanerDropsUnknownUnit(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []models.RawReservation{
		{ID: 1, UnitID: 99, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "Confirmed"},
		{ID: 2, UnitID: 99, CategoryID: 10, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "Confirmed"},
		{ID: 3, UnitID: 2, CategoryID: 77, Arrival: "2026-10-15", Departure: "2026-10-17", Status: "Confirmed"},
	}

	cleaned, skipped := c.Clean(cleanerProperty(), raw)
	if len(cleaned) != 1 || cleaned[0].ID != 3 {
		t.Fatalf("expected only reservation 3 to survive, got %+v", cleaned)
	}
	if cleaned[0].CategoryID != 10 {
		t.Errorf("expected category 10 from unit 2, got %d", cleaned[0].CategoryID)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped records, got %+v", skipped)
	}
	for _, s := range skipped {
		if s.Reason != "unit 99 not in property inventory" {
			t.Errorf("reservation %d: unexpected reason %q", s.ReservationID, s.Reason)
		}
	}
}
