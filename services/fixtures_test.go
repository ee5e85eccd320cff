package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// day0 is night 1 of every test window.
var day0 = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

// night returns the date of night n (1-based).
func night(n int) time.Time {
	return day0.AddDate(0, 0, n-1)
}

// stay books unit for nights first..last inclusive.
func stay(id, unit int64, first, last int, guest string) models.Reservation {
	return models.Reservation{
		ID:         id,
		UnitID:     unit,
		CategoryID: 10,
		Arrival:    night(first),
		Departure:  night(last + 1),
		GuestLabel: guest,
		Status:     models.StatusConfirmed,
	}
}

func cabinCategory(unitIDs ...int64) models.Category {
	names := map[int64]string{1: "A", 2: "B", 3: "C", 4: "D"}
	cat := models.Category{ID: 10, Name: "Cabin"}
	for _, id := range unitIDs {
		cat.Units = append(cat.Units, models.Unit{ID: id, CategoryID: 10, Name: names[id], Active: true})
	}
	return cat
}

func nightsWindow(n int) models.AnalysisWindow {
	return models.AnalysisWindow{Start: night(1), End: night(n), Kind: models.WindowRegular}
}

// literalCabin is A booked 1–2 and 4–5, B empty, C booked 2–4.
func literalCabin() []models.Reservation {
	return []models.Reservation{
		stay(1, 1, 1, 2, "Smith"),
		stay(2, 1, 4, 5, "Taylor"),
		stay(4, 3, 2, 4, "Brown"),
	}
}

// consolidationCabin is A booked 1–2 and 4–5, B booked 3, C booked 2–4.
func consolidationCabin() []models.Reservation {
	return []models.Reservation{
		stay(1, 1, 1, 2, "Smith"),
		stay(2, 1, 4, 5, "Taylor"),
		stay(3, 2, 3, 3, "Jones"),
		stay(4, 3, 2, 4, "Brown"),
	}
}

func mustSnapshot(t *testing.T, cat models.Category, w models.AnalysisWindow, res []models.Reservation) *OccupancySnapshot {
	t.Helper()
	snap, skipped, err := BuildSnapshot(cat, w, res, utils.NewNopLogger())
	require.NoError(t, err)
	require.Empty(t, skipped)
	return snap
}

func testScorer() *FragmentationScorer {
	return NewFragmentationScorer(10, 100)
}

// assertNoDoubleBooking applies moves in order to the reservations and
// fails if any unit ends up holding two overlapping stays.
func assertNoDoubleBooking(t *testing.T, reservations []models.Reservation, moves []models.Move) {
	t.Helper()
	at := make(map[int64]models.Reservation, len(reservations))
	for _, r := range reservations {
		if r.Status != models.StatusCancelled {
			at[r.ID] = r
		}
	}
	for _, mv := range moves {
		r, ok := at[mv.ReservationID]
		require.True(t, ok, "move %s names unknown reservation %d", mv.SequenceID, mv.ReservationID)
		require.Equal(t, mv.FromUnitID, r.UnitID, "move %s: reservation %d not on source unit", mv.SequenceID, r.ID)
		r.UnitID = mv.ToUnitID
		at[r.ID] = r

		for _, other := range at {
			if other.ID == r.ID || other.UnitID != r.UnitID {
				continue
			}
			overlap := other.Arrival.Before(r.Departure) && r.Arrival.Before(other.Departure)
			require.False(t, overlap, "move %s double-books unit %d with reservation %d", mv.SequenceID, r.UnitID, other.ID)
		}
	}
}
