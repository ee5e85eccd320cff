package models

import (
	"fmt"
	"strings"
	"time"
)

// WindowKind distinguishes the regular near-term window from holiday windows.
type WindowKind int

const (
	WindowRegular WindowKind = iota
	WindowHoliday
)

func (k WindowKind) String() string {
	if k == WindowHoliday {
		return "holiday"
	}
	return "regular"
}

// AnalysisWindow is a date range whose End is inclusive: it covers the
// nights Start, Start+1, ..., End.
type AnalysisWindow struct {
	Start   time.Time
	End     time.Time
	Kind    WindowKind
	Holiday *HolidayPeriod
}

// Days is the number of nights in the window, or 0 for an empty window.
func (w AnalysisWindow) Days() int {
	if !w.End.After(w.Start) {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Valid reports whether the window spans more than a single bound.
func (w AnalysisWindow) Valid() bool {
	return w.End.After(w.Start)
}

// Date returns the calendar date at offset i.
func (w AnalysisWindow) Date(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}

// Overlaps reports whether two windows share at least one night.
func (w AnalysisWindow) Overlaps(o AnalysisWindow) bool {
	return !w.Start.After(o.End) && !w.End.Before(o.Start)
}

func (w AnalysisWindow) String() string {
	label := w.Kind.String()
	if w.Holiday != nil {
		label = fmt.Sprintf("holiday:%s", w.Holiday.Name)
	}
	return fmt.Sprintf("%s[%s..%s]", label, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// Importance is the demand level of a holiday period.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceMedium
	ImportanceHigh
)

func (i Importance) String() string {
	switch i {
	case ImportanceHigh:
		return "High"
	case ImportanceMedium:
		return "Medium"
	}
	return "Low"
}

// ParseImportance maps a label onto an Importance, defaulting to Low.
func ParseImportance(raw string) Importance {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ImportanceHigh
	case "medium":
		return ImportanceMedium
	}
	return ImportanceLow
}

// HolidayPeriod is a public or school holiday as delivered by the calendar
// provider. Extended dates are the canonical dates padded by the buffer.
type HolidayPeriod struct {
	Name          string
	Type          string
	Importance    Importance
	Start         time.Time
	End           time.Time
	ExtendedStart time.Time
	ExtendedEnd   time.Time
	RegionCode    string
}
