package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// FileSource reads properties and reservations from a YAML (or JSON) file.
type FileSource struct {
	path   string
	logger *utils.Logger
}

func NewFileSource(path string, logger *utils.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

type propertyFile struct {
	Properties []propertyDoc `yaml:"properties"`
}

type propertyDoc struct {
	ID           int64            `yaml:"id"`
	Name         string           `yaml:"name"`
	Region       string           `yaml:"region"`
	Categories   []categoryDoc    `yaml:"categories"`
	Reservations []reservationDoc `yaml:"reservations"`
}

type categoryDoc struct {
	ID    int64     `yaml:"id"`
	Name  string    `yaml:"name"`
	Units []unitDoc `yaml:"units"`
}

type unitDoc struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active"`
}

type reservationDoc struct {
	ID        int64  `yaml:"id"`
	Unit      int64  `yaml:"unit"`
	Category  int64  `yaml:"category"`
	Arrival   string `yaml:"arrival"`
	Departure string `yaml:"departure"`
	Guest     string `yaml:"guest"`
	Status    string `yaml:"status"`
	Fixed     bool   `yaml:"fixed"`
}

// LoadProperties parses the whole file on every call so edits are picked up
// between scheduled runs.
func (fs *FileSource) LoadProperties(ctx context.Context) ([]models.PropertyData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("file source: read %q: %w", fs.path, err)
	}

	var doc propertyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("file source: parse %q: %w", fs.path, err)
	}

	out := make([]models.PropertyData, 0, len(doc.Properties))
	for _, p := range doc.Properties {
		out = append(out, toPropertyData(p))
	}
	fs.logger.Info("[file] Loaded %d properties from %s", len(out), fs.path)
	return out, nil
}

func toPropertyData(p propertyDoc) models.PropertyData {
	prop := models.Property{ID: p.ID, Name: p.Name, RegionCode: strings.TrimSpace(p.Region)}
	for _, c := range p.Categories {
		cat := models.Category{ID: c.ID, Name: c.Name}
		for _, u := range c.Units {
			cat.Units = append(cat.Units, models.Unit{
				ID:         u.ID,
				CategoryID: c.ID,
				Name:       u.Name,
				Active:     u.Active == nil || *u.Active,
			})
		}
		prop.Categories = append(prop.Categories, cat)
	}

	raw := make([]models.RawReservation, 0, len(p.Reservations))
	for _, r := range p.Reservations {
		raw = append(raw, models.RawReservation{
			ID:         r.ID,
			UnitID:     r.Unit,
			CategoryID: r.Category,
			Arrival:    r.Arrival,
			Departure:  r.Departure,
			GuestLabel: r.Guest,
			Status:     r.Status,
			Fixed:      r.Fixed,
		})
	}
	return models.PropertyData{Property: prop, Reservations: raw}
}

func (fs *FileSource) Close() error { return nil }
