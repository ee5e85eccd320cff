package models

import "time"

// MoveCandidate is a simulated reassignment found during search.
type MoveCandidate struct {
	Reservation Reservation
	FromUnitID  int64
	ToUnitID    int64
	Improvement float64
	ScoreBefore float64
	ScoreAfter  float64
	Valid       bool
}

// Move is an accepted candidate, ready for reporting.
type Move struct {
	SequenceID    string
	PropertyID    int64
	CategoryID    int64
	CategoryName  string
	CategoryIndex int
	Ordinal       int

	ReservationID int64
	GuestLabel    string
	Status        ReservationStatus
	Arrival       time.Time
	Departure     time.Time
	FromUnitID    int64
	ToUnitID      int64
	FromUnitName  string
	ToUnitName    string

	Improvement   float64
	ScoreBefore   float64
	ScoreAfter    float64
	Strategic     StrategicLevel
	PriorityScore float64
	Reasoning     string

	Window            AnalysisWindow
	IsHolidayMove     bool
	HolidayName       string
	HolidayType       string
	HolidayImportance Importance
	OverlapsRegular   bool
}

// Nights is the length of the moved stay.
func (m Move) Nights() int {
	return int(m.Departure.Sub(m.Arrival).Hours() / 24)
}
