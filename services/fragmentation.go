package services

// FragmentationScorer rates how broken up a category's free nights are.
// Lower scores are better.
//
//	score = penalty × blocks − Σ(block length²) / scale
type FragmentationScorer struct {
	penalty float64
	scale   float64
}

// NewFragmentationScorer creates a scorer with the given block penalty and
// bonus divisor.
func NewFragmentationScorer(penalty, scale float64) *FragmentationScorer {
	return &FragmentationScorer{penalty: penalty, scale: scale}
}

// BlockStats describes the free blocks of one unit or a whole category.
type BlockStats struct {
	Blocks  int
	Bonus   int
	Longest int
	Free    int
}

func (b BlockStats) add(o BlockStats) BlockStats {
	b.Blocks += o.Blocks
	b.Bonus += o.Bonus
	b.Free += o.Free
	if o.Longest > b.Longest {
		b.Longest = o.Longest
	}
	return b
}

// RowStats computes block statistics for a single unit row.
func RowStats(row []bool) BlockStats {
	var st BlockStats
	run := 0
	flush := func() {
		if run == 0 {
			return
		}
		st.Blocks++
		st.Bonus += run * run
		st.Free += run
		if run > st.Longest {
			st.Longest = run
		}
		run = 0
	}
	for _, free := range row {
		if free {
			run++
		} else {
			flush()
		}
	}
	flush()
	return st
}

// Value converts block statistics into a score.
func (f *FragmentationScorer) Value(st BlockStats) float64 {
	return f.penalty*float64(st.Blocks) - float64(st.Bonus)/f.scale
}

// UnitStats returns per-unit block statistics, indexed like snap.Units().
func (f *FragmentationScorer) UnitStats(snap *OccupancySnapshot) []BlockStats {
	stats := make([]BlockStats, len(snap.Units()))
	buf := make([]bool, 0, snap.Days())
	for u := range stats {
		buf = snap.row(u, buf)
		stats[u] = RowStats(buf)
	}
	return stats
}

// Stats aggregates block statistics over the whole category.
func (f *FragmentationScorer) Stats(snap *OccupancySnapshot) BlockStats {
	var total BlockStats
	for _, st := range f.UnitStats(snap) {
		total = total.add(st)
	}
	return total
}

// Score returns the category score of the snapshot.
func (f *FragmentationScorer) Score(snap *OccupancySnapshot) float64 {
	return f.Value(f.Stats(snap))
}
