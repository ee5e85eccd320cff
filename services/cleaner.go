package services

import (
	"fmt"
	"strings"
	"unicode"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// Cleaner transforms RawReservations into validated Reservations.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean validates raw reservations against the property's inventory. Bad
// records are dropped and reported; they never fail the batch.
func (c *Cleaner) Clean(property models.Property, raw []models.RawReservation) ([]models.Reservation, []models.SkippedRecord) {
	unitCategory := make(map[int64]int64)
	for _, cat := range property.Categories {
		for _, u := range cat.Units {
			unitCategory[u.ID] = cat.ID
		}
	}

	seen := utils.NewIDSet()
	result := make([]models.Reservation, 0, len(raw))
	var skipped []models.SkippedRecord

	drop := func(id int64, format string, args ...any) {
		reason := fmt.Sprintf(format, args...)
		c.logger.Warn("[cleaner] Dropping reservation %d: %s", id, reason)
		skipped = append(skipped, models.SkippedRecord{ReservationID: id, Reason: reason})
	}

	for _, r := range raw {
		if seen.Contains(r.ID) {
			c.logger.Debug("[cleaner] Duplicate reservation %d skipped", r.ID)
			continue
		}
		seen.Add(r.ID)
		if r.UnitID == 0 {
			drop(r.ID, "missing unit reference")
			continue
		}
		categoryID, known := unitCategory[r.UnitID]
		if !known {
			drop(r.ID, "unit %d not in property inventory", r.UnitID)
			continue
		}
		if r.CategoryID != 0 && r.CategoryID != categoryID {
			c.logger.Debug("[cleaner] Reservation %d declares category %d but unit %d is in %d",
				r.ID, r.CategoryID, r.UnitID, categoryID)
		}

		arrival, err := utils.ParseDate(r.Arrival)
		if err != nil {
			drop(r.ID, "malformed arrival: %v", err)
			continue
		}
		departure, err := utils.ParseDate(r.Departure)
		if err != nil {
			drop(r.ID, "malformed departure: %v", err)
			continue
		}
		if !departure.After(arrival) {
			drop(r.ID, "malformed date range %s → %s", r.Arrival, r.Departure)
			continue
		}

		result = append(result, models.Reservation{
			ID:         r.ID,
			UnitID:     r.UnitID,
			CategoryID: categoryID,
			Arrival:    arrival,
			Departure:  departure,
			GuestLabel: normaliseText(r.GuestLabel),
			Status:     models.ParseReservationStatus(r.Status),
			Fixed:      r.Fixed,
		})
	}

	c.logger.Info("[cleaner] Property %d: cleaned %d → %d reservations (%d unique ids, dropped %d)",
		property.ID, len(raw), len(result), seen.Size(), len(skipped))
	return result, skipped
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
