package services

import (
	"fmt"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// SequentialOptimizer repeatedly applies the best available move to a
// snapshot until none improves the score or the iteration cap is hit.
type SequentialOptimizer struct {
	search        *MoveSearch
	scorer        *FragmentationScorer
	maxIterations int
	logger        *utils.Logger
}

// NewSequentialOptimizer creates an optimizer bounded by maxIterations.
func NewSequentialOptimizer(search *MoveSearch, scorer *FragmentationScorer, maxIterations int, logger *utils.Logger) *SequentialOptimizer {
	return &SequentialOptimizer{
		search:        search,
		scorer:        scorer,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// OptimizationRun identifies the run a batch of moves belongs to.
type OptimizationRun struct {
	PropertyID    int64
	CategoryIndex int
	// SequencePrefix is "" for regular windows and "H" for holiday windows.
	SequencePrefix string
}

// OptimizationResult is the ordered move list for one category and window.
type OptimizationResult struct {
	Moves        []models.Move
	InitialScore float64
	FinalScore   float64
	IterationCap bool
}

// Optimize mutates snap in place, one accepted move per iteration.
func (o *SequentialOptimizer) Optimize(snap *OccupancySnapshot, run OptimizationRun) OptimizationResult {
	res := OptimizationResult{InitialScore: o.scorer.Score(snap)}
	res.FinalScore = res.InitialScore
	category := snap.Category()

	for {
		cand, ok := o.search.Best(snap)
		if !ok {
			break
		}
		if len(res.Moves) >= o.maxIterations {
			res.IterationCap = true
			o.logger.Warn("[optimizer] Category %d %s hit the iteration cap of %d; returning partial result",
				category.ID, snap.Window(), o.maxIterations)
			break
		}

		if err := snap.Apply(cand.Reservation.ID, cand.FromUnitID, cand.ToUnitID); err != nil {
			// Search only proposes free destinations, so this means the
			// snapshot is inconsistent; stop rather than loop on it.
			o.logger.Error("[optimizer] Could not apply reservation %d → unit %d: %v",
				cand.Reservation.ID, cand.ToUnitID, err)
			break
		}

		ordinal := len(res.Moves) + 1
		move := o.record(snap, run, cand, ordinal)
		res.Moves = append(res.Moves, move)
		res.FinalScore = cand.ScoreAfter

		o.logger.Debug("[optimizer] %s accepted: reservation %d unit %d → %d (improvement %.2f)",
			move.SequenceID, cand.Reservation.ID, cand.FromUnitID, cand.ToUnitID, cand.Improvement)
	}

	return res
}

func (o *SequentialOptimizer) record(snap *OccupancySnapshot, run OptimizationRun, cand models.MoveCandidate, ordinal int) models.Move {
	category := snap.Category()
	r := cand.Reservation
	return models.Move{
		SequenceID:    fmt.Sprintf("%s%d.%d", run.SequencePrefix, run.CategoryIndex, ordinal),
		PropertyID:    run.PropertyID,
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		CategoryIndex: run.CategoryIndex,
		Ordinal:       ordinal,
		ReservationID: r.ID,
		GuestLabel:    r.GuestLabel,
		Status:        r.Status,
		Arrival:       r.Arrival,
		Departure:     r.Departure,
		FromUnitID:    cand.FromUnitID,
		ToUnitID:      cand.ToUnitID,
		FromUnitName:  unitName(snap, cand.FromUnitID),
		ToUnitName:    unitName(snap, cand.ToUnitID),
		Improvement:   cand.Improvement,
		ScoreBefore:   cand.ScoreBefore,
		ScoreAfter:    cand.ScoreAfter,
		Reasoning:     reasoning(snap, cand),
		Window:        snap.Window(),
	}
}

func unitName(snap *OccupancySnapshot, id int64) string {
	if u, ok := snap.unitIdx[id]; ok && snap.units[u].Name != "" {
		return snap.units[u].Name
	}
	return fmt.Sprintf("#%d", id)
}

// reasoning describes what the move does to the source unit's free nights.
func reasoning(snap *OccupancySnapshot, cand models.MoveCandidate) string {
	r := cand.Reservation
	longest := 0
	if u, ok := snap.unitIdx[cand.FromUnitID]; ok {
		longest = RowStats(snap.row(u, nil)).Longest
	}
	return fmt.Sprintf("Move %s (%s, %s → %s, %d nights) from %s to %s: frees a %d-night block on %s; score %.2f → %.2f",
		r.GuestLabel, r.Status, utils.FormatDate(r.Arrival), utils.FormatDate(r.Departure), r.Nights(),
		unitName(snap, cand.FromUnitID), unitName(snap, cand.ToUnitID),
		longest, unitName(snap, cand.FromUnitID), cand.ScoreBefore, cand.ScoreAfter)
}
