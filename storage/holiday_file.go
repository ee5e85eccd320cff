package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// HolidayFile serves holiday periods from a YAML calendar file.
type HolidayFile struct {
	path   string
	logger *utils.Logger
}

func NewHolidayFile(path string, logger *utils.Logger) *HolidayFile {
	return &HolidayFile{path: path, logger: logger}
}

type holidayCalendar struct {
	Holidays []holidayDoc `yaml:"holidays"`
}

type holidayDoc struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Importance string `yaml:"importance"`
	Start      string `yaml:"start"`
	End        string `yaml:"end"`
	Region     string `yaml:"region"`
}

// Holidays returns the periods for region that overlap [from, to]. Entries
// with an empty region apply everywhere. Malformed entries are logged and
// left out.
func (h *HolidayFile) Holidays(ctx context.Context, region string, from, to time.Time) ([]models.HolidayPeriod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("holiday file: read %q: %w", h.path, err)
	}

	var cal holidayCalendar
	if err := yaml.Unmarshal(raw, &cal); err != nil {
		return nil, fmt.Errorf("holiday file: parse %q: %w", h.path, err)
	}

	from, to = utils.Day(from), utils.Day(to)
	var out []models.HolidayPeriod
	for _, doc := range cal.Holidays {
		start, err := utils.ParseDate(doc.Start)
		if err != nil {
			h.logger.Warn("[holiday] Ignoring %q: %v", doc.Name, err)
			continue
		}
		end, err := utils.ParseDate(doc.End)
		if err != nil {
			h.logger.Warn("[holiday] Ignoring %q: %v", doc.Name, err)
			continue
		}

		docRegion := strings.TrimSpace(doc.Region)
		if region != "" && docRegion != "" && !strings.EqualFold(region, docRegion) {
			continue
		}
		if end.Before(from) || start.After(to) {
			continue
		}

		out = append(out, models.HolidayPeriod{
			Name:       strings.TrimSpace(doc.Name),
			Type:       strings.TrimSpace(doc.Type),
			Importance: models.ParseImportance(doc.Importance),
			Start:      start,
			End:        end,
			RegionCode: docRegion,
		})
	}
	return out, nil
}
