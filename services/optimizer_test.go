package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

func newTestOptimizer(maxIterations int) *SequentialOptimizer {
	scorer := testScorer()
	return NewSequentialOptimizer(NewMoveSearch(scorer, utils.NewNopLogger()), scorer, maxIterations, utils.NewNopLogger())
}

// pinnedCabin is the consolidation scenario with B's night-3 stay fixed.
func pinnedCabin() []models.Reservation {
	res := consolidationCabin()
	res[2].Fixed = true
	return res
}

func TestOptimizeConsolidation(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), consolidationCabin())

	out := newTestOptimizer(100).Optimize(snap, OptimizationRun{PropertyID: 7, CategoryIndex: 1})

	require.Len(t, out.Moves, 1)
	mv := out.Moves[0]
	assert.Equal(t, "1.1", mv.SequenceID)
	assert.Equal(t, int64(7), mv.PropertyID)
	assert.Equal(t, int64(3), mv.ReservationID)
	assert.Equal(t, "B", mv.FromUnitName)
	assert.Equal(t, "A", mv.ToUnitName)
	assert.Equal(t, "Jones", mv.GuestLabel)
	assert.InDelta(t, 20.16, mv.Improvement, 1e-9)
	assert.Contains(t, mv.Reasoning, "frees a 5-night block on B")

	assert.InDelta(t, 49.89, out.InitialScore, 1e-9)
	assert.InDelta(t, 29.73, out.FinalScore, 1e-9)
	assert.False(t, out.IterationCap)
}

func TestOptimizeSequenceAndScores(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), pinnedCabin())

	out := newTestOptimizer(100).Optimize(snap, OptimizationRun{PropertyID: 7, CategoryIndex: 2})

	require.Len(t, out.Moves, 2)
	assert.Equal(t, "2.1", out.Moves[0].SequenceID)
	assert.Equal(t, int64(1), out.Moves[0].ReservationID)
	assert.InDelta(t, 10.04, out.Moves[0].Improvement, 1e-9)

	assert.Equal(t, "2.2", out.Moves[1].SequenceID)
	assert.Equal(t, int64(2), out.Moves[1].ReservationID)
	assert.InDelta(t, 10.12, out.Moves[1].Improvement, 1e-9)
	assert.Equal(t, 2, out.Moves[1].Ordinal)

	// Each move starts where the previous one finished.
	assert.InDelta(t, out.Moves[0].ScoreAfter, out.Moves[1].ScoreBefore, 1e-9)
	assert.InDelta(t, out.InitialScore-out.FinalScore, out.Moves[0].Improvement+out.Moves[1].Improvement, 1e-9)

	for _, mv := range out.Moves {
		assert.Greater(t, mv.Improvement, 0.0)
		assert.Equal(t, int64(2), mv.ToUnitID)
	}
	assertNoDoubleBooking(t, pinnedCabin(), out.Moves)
}

func TestOptimizeHolidayPrefix(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), consolidationCabin())

	out := newTestOptimizer(100).Optimize(snap, OptimizationRun{CategoryIndex: 3, SequencePrefix: "H"})

	require.Len(t, out.Moves, 1)
	assert.Equal(t, "H3.1", out.Moves[0].SequenceID)
}

func TestOptimizeIterationCap(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), pinnedCabin())

	out := newTestOptimizer(1).Optimize(snap, OptimizationRun{CategoryIndex: 1})

	require.Len(t, out.Moves, 1)
	assert.True(t, out.IterationCap)
	assert.InDelta(t, out.Moves[0].ScoreAfter, out.FinalScore, 1e-9)
}

func TestOptimizeCapNotReportedWhenDone(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), pinnedCabin())

	out := newTestOptimizer(2).Optimize(snap, OptimizationRun{CategoryIndex: 1})

	assert.Len(t, out.Moves, 2)
	assert.False(t, out.IterationCap)
}

func TestOptimizeNoMoves(t *testing.T) {
	snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), literalCabin())

	out := newTestOptimizer(100).Optimize(snap, OptimizationRun{CategoryIndex: 1})

	assert.Empty(t, out.Moves)
	assert.InDelta(t, 39.72, out.InitialScore, 1e-9)
	assert.Equal(t, out.InitialScore, out.FinalScore)
}

func TestOptimizeDeterministic(t *testing.T) {
	run := func() []models.Move {
		snap := mustSnapshot(t, cabinCategory(1, 2, 3), nightsWindow(5), pinnedCabin())
		return newTestOptimizer(100).Optimize(snap, OptimizationRun{CategoryIndex: 1}).Moves
	}
	assert.Equal(t, run(), run())
}
