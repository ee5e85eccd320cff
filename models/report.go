package models

import "time"

// StrategicLevel labels how urgently a category needs consolidation on a date.
type StrategicLevel int

const (
	StrategicNone StrategicLevel = iota
	StrategicLow
	StrategicMedium
	StrategicHigh
)

func (s StrategicLevel) String() string {
	switch s {
	case StrategicLow:
		return "Low"
	case StrategicMedium:
		return "Medium"
	case StrategicHigh:
		return "High"
	}
	return "None"
}

// Weight is the ranking multiplier applied to a move's improvement.
func (s StrategicLevel) Weight() float64 {
	return float64(s)
}

// DailyImportance is the strategic label for one category on one date.
type DailyImportance struct {
	CategoryID int64
	Date       time.Time
	Level      StrategicLevel
	Score      float64
}

// CategoryResult summarises the analysis of a single category.
type CategoryResult struct {
	CategoryID   int64
	CategoryName string
	Window       AnalysisWindow
	InitialScore float64
	FinalScore   float64
	Moves        int
	Skipped      bool
	SkipReason   string
	IterationCap bool
	Sufficiency  float64
}

// PropertyResult is the output of one property run.
type PropertyResult struct {
	RunID        string
	PropertyID   int64
	PropertyName string
	Today        time.Time
	Regular      AnalysisWindow
	Holidays     []AnalysisWindow
	Categories   []CategoryResult
	Moves        []Move
	Importance   []DailyImportance
	Skipped      []SkippedRecord
	Dropped      int
}

// Summary aggregates results across properties for the terminal report.
type Summary struct {
	Properties       int
	TotalMoves       int
	HolidayMoves     int
	RegularMoves     int
	SkippedRecords   int
	SkippedCategory  int
	TotalImprovement float64
	TopMoves         []Move
	MovesByCategory  map[string]int
	HighImportance   map[string]int
}
