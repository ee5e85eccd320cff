package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

var (
	// ErrInvalidWindow is returned for windows whose end is not after their start.
	ErrInvalidWindow = errors.New("analysis window end must be after start")
	// ErrInsufficientUnits is returned for categories with fewer than two active units.
	ErrInsufficientUnits = errors.New("category needs at least two active units")
	// ErrUnknownReservation is returned when a move names a reservation not in the snapshot.
	ErrUnknownReservation = errors.New("reservation not in snapshot")
	// ErrUnitOccupied is returned when a move's destination is not free for the whole stay.
	ErrUnitOccupied = errors.New("destination unit is occupied")
	// ErrNotAtSource is returned when a reservation is no longer on the move's source unit.
	ErrNotAtSource = errors.New("reservation is not on the source unit")
)

const emptyCell int32 = -1

// OccupancySnapshot is a dense unit × night matrix for one category and one
// window. Row u holds the nights of unit u; each cell is an index into the
// snapshot's reservation list or emptyCell.
//
// A snapshot is owned by a single optimizer run and is not safe for
// concurrent use.
type OccupancySnapshot struct {
	category models.Category
	window   models.AnalysisWindow
	units    []models.Unit
	unitIdx  map[int64]int
	days     int

	cells        []int32
	reservations []models.Reservation
	resIdx       map[int64]int
	location     []int
}

// BuildSnapshot places every reservation of the category that overlaps the
// window into a fresh matrix. Cancelled stays are ignored. Records that point
// at a unit outside the category's active set, or that collide with an
// already placed stay, are returned as skipped.
func BuildSnapshot(category models.Category, window models.AnalysisWindow, reservations []models.Reservation, logger *utils.Logger) (*OccupancySnapshot, []models.SkippedRecord, error) {
	if !window.Valid() {
		return nil, nil, fmt.Errorf("snapshot %s: %w", window, ErrInvalidWindow)
	}

	units := category.ActiveUnits()
	if len(units) < 2 {
		return nil, nil, fmt.Errorf("snapshot category %d (%d active units): %w", category.ID, len(units), ErrInsufficientUnits)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

	s := &OccupancySnapshot{
		category: category,
		window:   window,
		units:    units,
		unitIdx:  make(map[int64]int, len(units)),
		days:     window.Days(),
		resIdx:   make(map[int64]int),
	}
	for i, u := range units {
		s.unitIdx[u.ID] = i
	}
	s.cells = make([]int32, len(units)*s.days)
	for i := range s.cells {
		s.cells[i] = emptyCell
	}

	candidates := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.CategoryID == category.ID {
			candidates = append(candidates, r)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	var skipped []models.SkippedRecord
	for _, r := range candidates {
		if r.Status == models.StatusCancelled {
			continue
		}
		from, to := s.clamp(r.Arrival, r.Departure)
		if from >= to {
			continue
		}

		u, ok := s.unitIdx[r.UnitID]
		if !ok {
			reason := fmt.Sprintf("unit %d is not an active unit of category %d", r.UnitID, category.ID)
			logger.Warn("[occupancy] Skipping reservation %d: %s", r.ID, reason)
			skipped = append(skipped, models.SkippedRecord{ReservationID: r.ID, Reason: reason})
			continue
		}

		if clash := s.firstOccupant(u, from, to); clash >= 0 {
			reason := fmt.Sprintf("overlaps reservation %d on unit %d", s.reservations[clash].ID, r.UnitID)
			logger.Warn("[occupancy] Skipping reservation %d: %s", r.ID, reason)
			skipped = append(skipped, models.SkippedRecord{ReservationID: r.ID, Reason: reason})
			continue
		}

		idx := len(s.reservations)
		s.reservations = append(s.reservations, r)
		s.resIdx[r.ID] = idx
		s.location = append(s.location, u)
		s.fill(u, from, to, int32(idx))
	}

	logger.Debug("[occupancy] Category %d %s: %d units × %d nights, %d reservations placed",
		category.ID, window, len(units), s.days, len(s.reservations))
	return s, skipped, nil
}

// Category returns the category the snapshot was built for.
func (s *OccupancySnapshot) Category() models.Category { return s.category }

// Window returns the analysed window.
func (s *OccupancySnapshot) Window() models.AnalysisWindow { return s.window }

// Units returns the active units ordered by id.
func (s *OccupancySnapshot) Units() []models.Unit { return s.units }

// Days returns the number of nights on the date axis.
func (s *OccupancySnapshot) Days() int { return s.days }

// Reservations returns every placed reservation with its current unit.
func (s *OccupancySnapshot) Reservations() []models.Reservation {
	out := make([]models.Reservation, len(s.reservations))
	for i := range s.reservations {
		out[i] = s.current(i)
	}
	return out
}

// Reservation returns a placed reservation with its current unit.
func (s *OccupancySnapshot) Reservation(id int64) (models.Reservation, bool) {
	idx, ok := s.resIdx[id]
	if !ok {
		return models.Reservation{}, false
	}
	return s.current(idx), true
}

// Occupant returns the reservation on unit index u at night offset d.
func (s *OccupancySnapshot) Occupant(u, d int) (models.Reservation, bool) {
	c := s.cells[u*s.days+d]
	if c == emptyCell {
		return models.Reservation{}, false
	}
	return s.current(int(c)), true
}

// IsFree reports whether unit index u is empty on night offset d.
func (s *OccupancySnapshot) IsFree(u, d int) bool {
	return s.cells[u*s.days+d] == emptyCell
}

// FreeUnitsOn counts empty units on night offset d.
func (s *OccupancySnapshot) FreeUnitsOn(d int) int {
	n := 0
	for u := range s.units {
		if s.IsFree(u, d) {
			n++
		}
	}
	return n
}

// Span returns the clamped night offsets [from, to) of a placed reservation.
func (s *OccupancySnapshot) Span(id int64) (int, int, bool) {
	idx, ok := s.resIdx[id]
	if !ok {
		return 0, 0, false
	}
	r := s.reservations[idx]
	from, to := s.clamp(r.Arrival, r.Departure)
	return from, to, true
}

// WithinWindow reports whether the stay lies entirely inside the window.
func (s *OccupancySnapshot) WithinWindow(r models.Reservation) bool {
	end := s.window.End.AddDate(0, 0, 1)
	return !r.Arrival.Before(s.window.Start) && !r.Departure.After(end)
}

// Apply moves a reservation onto another unit of the category. The
// destination must be free for every night of the stay inside the window.
func (s *OccupancySnapshot) Apply(reservationID, fromUnitID, toUnitID int64) error {
	idx, ok := s.resIdx[reservationID]
	if !ok {
		return fmt.Errorf("apply %d: %w", reservationID, ErrUnknownReservation)
	}
	src, ok := s.unitIdx[fromUnitID]
	if !ok || s.location[idx] != src {
		return fmt.Errorf("apply %d from unit %d: %w", reservationID, fromUnitID, ErrNotAtSource)
	}
	dst, ok := s.unitIdx[toUnitID]
	if !ok {
		return fmt.Errorf("apply %d to unit %d: %w", reservationID, toUnitID, ErrUnitOccupied)
	}

	r := s.reservations[idx]
	from, to := s.clamp(r.Arrival, r.Departure)
	if s.firstOccupant(dst, from, to) >= 0 {
		return fmt.Errorf("apply %d to unit %d: %w", reservationID, toUnitID, ErrUnitOccupied)
	}

	s.fill(src, from, to, emptyCell)
	s.fill(dst, from, to, int32(idx))
	s.location[idx] = dst
	return nil
}

// row returns the free/occupied flags of unit index u, copied into buf.
func (s *OccupancySnapshot) row(u int, buf []bool) []bool {
	buf = buf[:0]
	base := u * s.days
	for d := 0; d < s.days; d++ {
		buf = append(buf, s.cells[base+d] == emptyCell)
	}
	return buf
}

func (s *OccupancySnapshot) current(idx int) models.Reservation {
	r := s.reservations[idx]
	r.UnitID = s.units[s.location[idx]].ID
	return r
}

// clamp converts a stay into night offsets inside the window.
func (s *OccupancySnapshot) clamp(arrival, departure time.Time) (int, int) {
	from := utils.DaysBetween(s.window.Start, arrival)
	to := utils.DaysBetween(s.window.Start, departure)
	if from < 0 {
		from = 0
	}
	if to > s.days {
		to = s.days
	}
	return from, to
}

func (s *OccupancySnapshot) firstOccupant(u, from, to int) int {
	base := u * s.days
	for d := from; d < to; d++ {
		if c := s.cells[base+d]; c != emptyCell {
			return int(c)
		}
	}
	return -1
}

func (s *OccupancySnapshot) fill(u, from, to int, v int32) {
	base := u * s.days
	for d := from; d < to; d++ {
		s.cells[base+d] = v
	}
}
