package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

func TestBuildSnapshotPlacesReservations(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(3, 1, 2), nightsWindow(5), literalCabin())

	require.Equal(t, 5, snap.Days())
	require.Len(t, snap.Units(), 3)
	assert.Equal(t, int64(1), snap.Units()[0].ID, "units are ordered by id")

	// A: booked 1-2 and 4-5
	for d, free := range []bool{false, false, true, false, false} {
		assert.Equal(t, free, snap.IsFree(0, d), "unit A night %d", d+1)
	}
	// B: empty
	for d := 0; d < 5; d++ {
		assert.True(t, snap.IsFree(1, d))
	}

	occ, ok := snap.Occupant(2, 1)
	require.True(t, ok)
	assert.Equal(t, int64(4), occ.ID)
	assert.Equal(t, 2, snap.FreeUnitsOn(0))
	assert.Equal(t, 1, snap.FreeUnitsOn(1))
}

func TestBuildSnapshotClampsAndExcludes(t *testing.T) {
	early := stay(10, 1, -2, 2, "Early")      // starts before the window
	late := stay(11, 2, 5, 9, "Late")         // runs past the window end
	outside := stay(12, 2, 8, 9, "Outside")   // entirely after the window
	before := stay(13, 3, -5, -1, "Before")   // entirely before the window
	cancelled := stay(14, 3, 1, 5, "Cancel")
	cancelled.Status = models.StatusCancelled
	otherCategory := stay(15, 3, 1, 5, "Other")
	otherCategory.CategoryID = 99

	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5),
		[]models.Reservation{early, late, outside, before, cancelled, otherCategory})

	from, to, ok := snap.Span(10)
	require.True(t, ok)
	assert.Equal(t, 0, from)
	assert.Equal(t, 2, to)

	from, to, ok = snap.Span(11)
	require.True(t, ok)
	assert.Equal(t, 4, from)
	assert.Equal(t, 5, to)

	for _, id := range []int64{12, 13, 14, 15} {
		_, ok := snap.Reservation(id)
		assert.False(t, ok, "reservation %d should not be placed", id)
	}
	assert.Equal(t, 3, snap.FreeUnitsOn(2))

	assert.False(t, snap.WithinWindow(early))
	assert.False(t, snap.WithinWindow(late))
	assert.True(t, snap.WithinWindow(stay(16, 1, 1, 5, "Whole")))
}

func TestBuildSnapshotSkipsBadRecords(t *testing.T) {
	cat := cabinCategory(1, 2)
	cat.Units = append(cat.Units, models.Unit{ID: 3, CategoryID: 10, Active: false})

	res := []models.Reservation{
		stay(1, 1, 1, 3, "Ok"),
		stay(2, 3, 1, 2, "InactiveUnit"),
		stay(3, 1, 2, 4, "Clash"),
		stay(4, 7, 1, 2, "UnknownUnit"),
	}
	snap, skipped, err := BuildSnapshot(cat, nightsWindow(5), res, utils.NewNopLogger())
	require.NoError(t, err)

	require.Len(t, skipped, 3)
	assert.Equal(t, int64(2), skipped[0].ReservationID)
	assert.Equal(t, int64(3), skipped[1].ReservationID)
	assert.Contains(t, skipped[1].Reason, "overlaps reservation 1")
	assert.Equal(t, int64(4), skipped[2].ReservationID)
	assert.Len(t, snap.Reservations(), 1)
}

func TestBuildSnapshotStructuralErrors(t *testing.T) {
	logger := utils.NewNopLogger()

	_, _, err := BuildSnapshot(cabinCategory(1), nightsWindow(5), nil, logger)
	assert.ErrorIs(t, err, ErrInsufficientUnits)

	cat := cabinCategory(1, 2)
	cat.Units[1].Active = false
	_, _, err = BuildSnapshot(cat, nightsWindow(5), nil, logger)
	assert.ErrorIs(t, err, ErrInsufficientUnits)

	w := nightsWindow(5)
	w.End = w.Start
	_, _, err = BuildSnapshot(cabinCategory(1, 2), w, nil, logger)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	w.End = w.Start.AddDate(0, 0, -3)
	_, _, err = BuildSnapshot(cabinCategory(1, 2), w, nil, logger)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSnapshotApply(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), literalCabin())

	require.NoError(t, snap.Apply(1, 1, 2))
	r, ok := snap.Reservation(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), r.UnitID)
	assert.True(t, snap.IsFree(0, 0))
	assert.False(t, snap.IsFree(1, 0))

	assert.ErrorIs(t, snap.Apply(99, 1, 2), ErrUnknownReservation)
	assert.ErrorIs(t, snap.Apply(1, 1, 3), ErrNotAtSource)
	assert.ErrorIs(t, snap.Apply(2, 1, 3), ErrUnitOccupied, "C is booked on night 4")
	assert.ErrorIs(t, snap.Apply(2, 1, 42), ErrUnitOccupied)
}
