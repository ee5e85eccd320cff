package services

import (
	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// scoreEpsilon absorbs floating point noise when comparing scores.
const scoreEpsilon = 1e-9

// MoveSearch finds the single best improving move in a snapshot.
type MoveSearch struct {
	scorer *FragmentationScorer
	logger *utils.Logger
}

// NewMoveSearch creates a MoveSearch using the given scorer.
func NewMoveSearch(scorer *FragmentationScorer, logger *utils.Logger) *MoveSearch {
	return &MoveSearch{scorer: scorer, logger: logger}
}

// Moveable reports whether a reservation may be reassigned at all.
func Moveable(r models.Reservation) bool {
	if r.Fixed {
		return false
	}
	switch r.Status {
	case models.StatusMaintenance, models.StatusPencil, models.StatusCancelled, models.StatusOther:
		return false
	}
	return true
}

// Best evaluates every moveable reservation against every other unit of the
// category and returns the candidate with the highest positive improvement.
// Ties go to the lowest destination unit id, then the lowest reservation id.
// The second return value is false when no improving move exists.
func (ms *MoveSearch) Best(snap *OccupancySnapshot) (models.MoveCandidate, bool) {
	units := snap.Units()
	stats := ms.scorer.UnitStats(snap)

	var total BlockStats
	for _, st := range stats {
		total = total.add(st)
	}
	before := ms.scorer.Value(total)

	srcRow := make([]bool, 0, snap.Days())
	dstRow := make([]bool, 0, snap.Days())

	var best models.MoveCandidate
	found := false

	for _, r := range snap.Reservations() {
		if !Moveable(r) || !snap.WithinWindow(r) {
			continue
		}
		from, to, _ := snap.Span(r.ID)
		src := snap.unitIdx[r.UnitID]

		srcRow = snap.row(src, srcRow)
		for d := from; d < to; d++ {
			srcRow[d] = true
		}
		srcAfter := RowStats(srcRow)

		for dst := range units {
			if dst == src || !ms.rangeFree(snap, dst, from, to) {
				continue
			}

			dstRow = snap.row(dst, dstRow)
			for d := from; d < to; d++ {
				dstRow[d] = false
			}
			dstAfter := RowStats(dstRow)

			after := BlockStats{
				Blocks: total.Blocks - stats[src].Blocks - stats[dst].Blocks + srcAfter.Blocks + dstAfter.Blocks,
				Bonus:  total.Bonus - stats[src].Bonus - stats[dst].Bonus + srcAfter.Bonus + dstAfter.Bonus,
				Free:   total.Free,
			}
			after.Longest = max(srcAfter.Longest, dstAfter.Longest)
			for u, st := range stats {
				if u != src && u != dst && st.Longest > after.Longest {
					after.Longest = st.Longest
				}
			}

			score := ms.scorer.Value(after)
			improvement := before - score
			if improvement <= scoreEpsilon {
				continue
			}
			if after.Longest < total.Longest {
				ms.logger.Debug("[search] Rejecting reservation %d → unit %d: longest block %d → %d",
					r.ID, units[dst].ID, total.Longest, after.Longest)
				continue
			}

			cand := models.MoveCandidate{
				Reservation: r,
				FromUnitID:  r.UnitID,
				ToUnitID:    units[dst].ID,
				Improvement: improvement,
				ScoreBefore: before,
				ScoreAfter:  score,
				Valid:       true,
			}
			if !found || better(cand, best) {
				best = cand
				found = true
			}
		}
	}

	return best, found
}

func (ms *MoveSearch) rangeFree(snap *OccupancySnapshot, u, from, to int) bool {
	for d := from; d < to; d++ {
		if !snap.IsFree(u, d) {
			return false
		}
	}
	return true
}

// better orders candidates: higher improvement first, then lower
// destination unit id, then lower reservation id.
func better(a, b models.MoveCandidate) bool {
	diff := a.Improvement - b.Improvement
	if diff > scoreEpsilon {
		return true
	}
	if diff < -scoreEpsilon {
		return false
	}
	if a.ToUnitID != b.ToUnitID {
		return a.ToUnitID < b.ToUnitID
	}
	return a.Reservation.ID < b.Reservation.ID
}
