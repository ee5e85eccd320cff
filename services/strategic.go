package services

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"occupancy-optimizer/models"
)

const (
	blockWeight        = 0.5
	gapWeight          = 0.3
	availabilityWeight = 0.2

	maxGapsPerUnit = 3.0

	lowCutoff  = 0.33
	highCutoff = 0.67
)

// StrategicClassifier labels each night of a category by how much it needs
// consolidation.
type StrategicClassifier struct {
	minFreeUnits   int
	threshold      float64
	sampleFraction float64
}

// NewStrategicClassifier creates a classifier from the run constants.
func NewStrategicClassifier(cfg AnalysisConfig) *StrategicClassifier {
	cfg = cfg.withDefaults()
	return &StrategicClassifier{
		minFreeUnits:   cfg.MinFreeUnits,
		threshold:      cfg.SufficiencyThreshold,
		sampleFraction: cfg.SampleFraction,
	}
}

// StrategicAssessment is the classification of one snapshot.
type StrategicAssessment struct {
	CategoryID  int64
	Sufficiency float64
	Daily       []models.DailyImportance
}

// LevelBetween returns the highest label over the nights [from, to).
func (a StrategicAssessment) LevelBetween(from, to int) models.StrategicLevel {
	level := models.StrategicNone
	for d := max(from, 0); d < to && d < len(a.Daily); d++ {
		if a.Daily[d].Level > level {
			level = a.Daily[d].Level
		}
	}
	return level
}

// Classify scores every night of the snapshot. When enough of the trailing
// sample already has plenty of free units, every night is labelled None.
func (c *StrategicClassifier) Classify(snap *OccupancySnapshot) StrategicAssessment {
	days := snap.Days()
	units := len(snap.Units())
	category := snap.Category()

	out := StrategicAssessment{
		CategoryID: category.ID,
		Daily:      make([]models.DailyImportance, days),
	}
	for d := range out.Daily {
		out.Daily[d] = models.DailyImportance{CategoryID: category.ID, Date: snap.Window().Date(d)}
	}
	if days == 0 || units == 0 {
		return out
	}

	out.Sufficiency = c.sufficiency(snap)
	if out.Sufficiency >= c.threshold {
		return out
	}

	covering := make([][]float64, days)
	totalBlocks := 0
	for u := 0; u < units; u++ {
		row := snap.row(u, nil)
		totalBlocks += RowStats(row).Blocks
		for d, length := range runLengths(row) {
			if length > 0 {
				covering[d] = append(covering[d], float64(length))
			}
		}
	}
	gapDensity := math.Min(float64(totalBlocks)/float64(units), maxGapsPerUnit) / maxGapsPerUnit

	for d := 0; d < days; d++ {
		inverseBlock := 0.0
		if len(covering[d]) > 0 {
			inverseBlock = 1 / stat.Mean(covering[d], nil)
		}
		inverseAvailability := 1 - float64(len(covering[d]))/float64(units)

		score := blockWeight*inverseBlock + gapWeight*gapDensity + availabilityWeight*inverseAvailability
		score = math.Max(0, math.Min(1, score))

		out.Daily[d].Score = score
		out.Daily[d].Level = bucket(score)
	}
	return out
}

// sufficiency is the share of the trailing sample on which at least
// minFreeUnits units are empty.
func (c *StrategicClassifier) sufficiency(snap *OccupancySnapshot) float64 {
	days := snap.Days()
	// Round before Ceil so 0.7×10 is 7, not 8.
	size := int(math.Ceil(math.Round(c.sampleFraction*float64(days)*1e6) / 1e6))
	if size < 1 {
		size = 1
	}
	if size > days {
		size = days
	}

	hits := 0
	for d := days - size; d < days; d++ {
		if snap.FreeUnitsOn(d) >= c.minFreeUnits {
			hits++
		}
	}
	return float64(hits) / float64(size)
}

func bucket(score float64) models.StrategicLevel {
	switch {
	case score < lowCutoff:
		return models.StrategicLow
	case score > highCutoff:
		return models.StrategicHigh
	}
	return models.StrategicMedium
}

// runLengths maps every free night to the length of the block containing it;
// occupied nights map to 0.
func runLengths(row []bool) []int {
	out := make([]int, len(row))
	for d := 0; d < len(row); {
		if !row[d] {
			d++
			continue
		}
		end := d
		for end < len(row) && row[end] {
			end++
		}
		for i := d; i < end; i++ {
			out[i] = end - d
		}
		d = end
	}
	return out
}
