package services

import (
	"fmt"
	"sort"
	"time"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// overlapShare is the share of a holiday move's nights a regular move must
// cover to count as the same suggestion.
const overlapShare = 0.5

// MoveMerger reconciles the regular and holiday move lists into one ranked,
// applicable list.
type MoveMerger struct {
	logger *utils.Logger
}

// NewMoveMerger creates a MoveMerger.
func NewMoveMerger(logger *utils.Logger) *MoveMerger {
	return &MoveMerger{logger: logger}
}

// MergeResult is the final move list plus what was removed on the way.
type MergeResult struct {
	Moves      []models.Move
	Duplicates int
	Conflicts  int
}

// Merge drops regular moves duplicated by a holiday move, ranks the
// survivors, and replays them against the property's bookings so that the
// returned order can be applied one after another without double-booking.
// Moves that never become applicable are dropped.
func (m *MoveMerger) Merge(regular, holiday []models.Move, regularWindow models.AnalysisWindow, reservations []models.Reservation) MergeResult {
	var res MergeResult

	tagged := make([]models.Move, len(holiday))
	for i, h := range holiday {
		h.IsHolidayMove = true
		h.OverlapsRegular = h.Window.Overlaps(regularWindow)
		tagged[i] = h
	}
	holidays, dupHolidays := dedupeHolidays(tagged)
	res.Duplicates += dupHolidays

	kept := make([]models.Move, 0, len(regular)+len(holidays))
	for _, r := range regular {
		dup := false
		for _, h := range holidays {
			if IsDuplicate(r, h) {
				dup = true
				m.logger.Debug("[merger] Regular %s duplicates holiday move %s (%s); keeping holiday",
					r.SequenceID, h.SequenceID, h.HolidayName)
				break
			}
		}
		if dup {
			res.Duplicates++
			continue
		}
		kept = append(kept, r)
	}
	kept = append(kept, holidays...)

	rankMoves(kept)

	applied, conflicts := replay(kept, reservations)
	for _, c := range conflicts {
		m.logger.Warn("[merger] Dropping %s: reservation %d cannot move from unit %d to %d after earlier moves",
			c.SequenceID, c.ReservationID, c.FromUnitID, c.ToUnitID)
	}
	res.Conflicts = len(conflicts)
	res.Moves = resequence(applied)
	return res
}

// IsDuplicate reports whether a regular move repeats a holiday move. Both
// must share property, unit pair and guest. When the holiday window overlaps
// the regular window the stays must overlap by more than half of the
// holiday move's nights; otherwise the dates must match exactly.
func IsDuplicate(regular, holiday models.Move) bool {
	if regular.PropertyID != holiday.PropertyID ||
		regular.FromUnitID != holiday.FromUnitID ||
		regular.ToUnitID != holiday.ToUnitID ||
		regular.GuestLabel != holiday.GuestLabel {
		return false
	}

	if !holiday.OverlapsRegular {
		return regular.Arrival.Equal(holiday.Arrival) && regular.Departure.Equal(holiday.Departure)
	}

	nights := holiday.Nights()
	if nights <= 0 {
		return false
	}
	overlap := overlapNights(regular.Arrival, regular.Departure, holiday.Arrival, holiday.Departure)
	return float64(overlap)/float64(nights) > overlapShare
}

func overlapNights(aStart, aEnd, bStart, bEnd time.Time) int {
	start := utils.MaxDate(aStart, bStart)
	end := utils.MinDate(aEnd, bEnd)
	if !end.After(start) {
		return 0
	}
	return utils.DaysBetween(start, end)
}

// dedupeHolidays removes repeats of the same move found in more than one
// holiday window. The most important, earliest window wins.
func dedupeHolidays(moves []models.Move) ([]models.Move, int) {
	ordered := append([]models.Move(nil), moves...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.HolidayImportance != b.HolidayImportance {
			return a.HolidayImportance > b.HolidayImportance
		}
		return a.Window.Start.Before(b.Window.Start)
	})

	seen := make(map[string]struct{}, len(ordered))
	out := make([]models.Move, 0, len(ordered))
	for _, mv := range ordered {
		key := fmt.Sprintf("%d|%d|%d|%d|%s|%s", mv.PropertyID, mv.ReservationID, mv.FromUnitID, mv.ToUnitID,
			utils.FormatDate(mv.Arrival), utils.FormatDate(mv.Departure))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, mv)
	}
	return out, len(moves) - len(out)
}

// priorityRank puts high-importance holiday moves first, other holiday
// moves second and regular moves last.
func priorityRank(mv models.Move) int {
	if !mv.IsHolidayMove {
		return 2
	}
	if mv.HolidayImportance == models.ImportanceHigh {
		return 0
	}
	return 1
}

func rankMoves(moves []models.Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		if ra, rb := priorityRank(a), priorityRank(b); ra != rb {
			return ra < rb
		}
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if a.Improvement != b.Improvement {
			return a.Improvement > b.Improvement
		}
		if !a.Window.Start.Equal(b.Window.Start) {
			return a.Window.Start.Before(b.Window.Start)
		}
		if a.CategoryIndex != b.CategoryIndex {
			return a.CategoryIndex < b.CategoryIndex
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		return a.ReservationID < b.ReservationID
	})
}

// bookingLedger tracks where each reservation sits while moves are replayed.
type bookingLedger struct {
	stays  map[int64]models.Reservation
	byUnit map[int64][]int64
}

func newBookingLedger(reservations []models.Reservation) *bookingLedger {
	l := &bookingLedger{
		stays:  make(map[int64]models.Reservation, len(reservations)),
		byUnit: make(map[int64][]int64),
	}
	for _, r := range reservations {
		if r.Status == models.StatusCancelled {
			continue
		}
		l.stays[r.ID] = r
		l.byUnit[r.UnitID] = append(l.byUnit[r.UnitID], r.ID)
	}
	return l
}

func (l *bookingLedger) canApply(mv models.Move) bool {
	r, ok := l.stays[mv.ReservationID]
	if !ok || r.UnitID != mv.FromUnitID || mv.FromUnitID == mv.ToUnitID {
		return false
	}
	for _, id := range l.byUnit[mv.ToUnitID] {
		other := l.stays[id]
		if other.Arrival.Before(r.Departure) && r.Arrival.Before(other.Departure) {
			return false
		}
	}
	return true
}

func (l *bookingLedger) apply(mv models.Move) {
	r := l.stays[mv.ReservationID]
	ids := l.byUnit[mv.FromUnitID]
	for i, id := range ids {
		if id == r.ID {
			l.byUnit[mv.FromUnitID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	r.UnitID = mv.ToUnitID
	l.stays[r.ID] = r
	l.byUnit[mv.ToUnitID] = append(l.byUnit[mv.ToUnitID], r.ID)
}

// replay applies moves in rank order, deferring any move that is blocked
// until a later pass frees its destination.
func replay(moves []models.Move, reservations []models.Reservation) ([]models.Move, []models.Move) {
	ledger := newBookingLedger(reservations)
	pending := moves
	applied := make([]models.Move, 0, len(moves))

	for progress := true; progress && len(pending) > 0; {
		progress = false
		next := pending[:0:0]
		for _, mv := range pending {
			if ledger.canApply(mv) {
				ledger.apply(mv)
				applied = append(applied, mv)
				progress = true
				continue
			}
			next = append(next, mv)
		}
		pending = next
	}
	return applied, pending
}

// resequence renumbers holiday moves as H{category}.{n} in final order.
// Regular moves keep the ids the optimizer gave them.
func resequence(moves []models.Move) []models.Move {
	counters := make(map[int]int)
	for i := range moves {
		if !moves[i].IsHolidayMove {
			continue
		}
		counters[moves[i].CategoryIndex]++
		n := counters[moves[i].CategoryIndex]
		moves[i].Ordinal = n
		moves[i].SequenceID = fmt.Sprintf("H%d.%d", moves[i].CategoryIndex, n)
	}
	return moves
}
