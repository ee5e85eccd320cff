package services

import (
	"sort"
	"strings"
	"time"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// HolidayWindowCalculator turns upcoming holiday periods into padded
// analysis windows.
type HolidayWindowCalculator struct {
	horizonDays int
	bufferDays  int
	logger      *utils.Logger
}

// NewHolidayWindowCalculator creates a calculator with the given look-ahead
// and padding, both in days.
func NewHolidayWindowCalculator(horizonDays, bufferDays int, logger *utils.Logger) *HolidayWindowCalculator {
	return &HolidayWindowCalculator{horizonDays: horizonDays, bufferDays: bufferDays, logger: logger}
}

// Horizon returns the last date holidays are looked up for.
func (h *HolidayWindowCalculator) Horizon(today time.Time) time.Time {
	return utils.AddDays(today, h.horizonDays)
}

// Windows returns one window per holiday that applies to region and
// overlaps [today, today+horizon]. Windows never start before today.
// The result is ordered by start date, then holiday name.
func (h *HolidayWindowCalculator) Windows(today time.Time, region string, holidays []models.HolidayPeriod) []models.AnalysisWindow {
	today = utils.Day(today)
	horizon := h.Horizon(today)

	var windows []models.AnalysisWindow
	for _, hol := range holidays {
		if !regionMatches(region, hol.RegionCode) {
			continue
		}
		start, end := utils.Day(hol.Start), utils.Day(hol.End)
		if end.Before(start) {
			h.logger.Warn("[holiday] Ignoring %q: end %s before start %s",
				hol.Name, utils.FormatDate(end), utils.FormatDate(start))
			continue
		}
		if end.Before(today) || start.After(horizon) {
			continue
		}

		period := hol
		period.Start, period.End = start, end
		period.ExtendedStart = utils.AddDays(start, -h.bufferDays)
		period.ExtendedEnd = utils.AddDays(end, h.bufferDays)

		w := models.AnalysisWindow{
			Start:   utils.MaxDate(period.ExtendedStart, today),
			End:     period.ExtendedEnd,
			Kind:    models.WindowHoliday,
			Holiday: &period,
		}
		if !w.Valid() {
			h.logger.Info("[holiday] No analysis performed for %q: window %s is empty", hol.Name, w)
			continue
		}
		windows = append(windows, w)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		if !windows[i].Start.Equal(windows[j].Start) {
			return windows[i].Start.Before(windows[j].Start)
		}
		return windows[i].Holiday.Name < windows[j].Holiday.Name
	})
	return windows
}

// regionMatches treats an empty code on either side as nationwide.
func regionMatches(property, holiday string) bool {
	if property == "" || holiday == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(property), strings.TrimSpace(holiday))
}
