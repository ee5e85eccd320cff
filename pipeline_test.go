package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-optimizer/config"
	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

const pipelineProperties = `
properties:
  - id: 1
    name: Lakeside
    categories:
      - id: 10
        name: Cabin
        units:
          - {id: 1, name: A}
          - {id: 2, name: B}
          - {id: 3, name: C}
    reservations:
      - {id: 1, unit: 1, arrival: "2026-10-15", departure: "2026-10-17", guest: Smith, status: Confirmed}
      - {id: 2, unit: 1, arrival: "2026-10-18", departure: "2026-10-20", guest: Taylor, status: Confirmed}
      - {id: 3, unit: 2, arrival: "2026-10-17", departure: "2026-10-18", guest: Jones, status: Confirmed}
      - {id: 4, unit: 3, arrival: "2026-10-16", departure: "2026-10-19", guest: Brown, status: Confirmed}
`

const pipelineHolidays = `
holidays:
  - {name: School Holidays, type: school, importance: High, start: "2026-10-16", end: "2026-10-17", region: NSW}
`

func testConfig(t *testing.T, withHolidays bool) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.FromEnv()
	cfg.Source = "file"
	cfg.RegionCode = "NSW"
	cfg.InputPath = filepath.Join(dir, "properties.yaml")
	cfg.HolidayPath = filepath.Join(dir, "holidays.yaml")
	cfg.MovesCSVPath = filepath.Join(dir, "out", "moves.csv")
	cfg.ImportanceCSVPath = filepath.Join(dir, "out", "importance.csv")

	require.NoError(t, os.WriteFile(cfg.InputPath, []byte(pipelineProperties), 0o644))
	if withHolidays {
		require.NoError(t, os.WriteFile(cfg.HolidayPath, []byte(pipelineHolidays), 0o644))
	}
	return cfg
}

func csvRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

var pipelineToday = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func TestPipelineRunWithHolidays(t *testing.T) {
	color.NoColor = true
	cfg := testConfig(t, true)
	var out bytes.Buffer

	results, err := newPipeline(cfg, utils.NewNopLogger(), &out).run(context.Background(), pipelineToday)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "NSW", results[0].Holidays[0].Holiday.RegionCode)
	require.Len(t, results[0].Moves, 1)
	assert.Equal(t, "H1.1", results[0].Moves[0].SequenceID)

	moves := csvRows(t, cfg.MovesCSVPath)
	require.Len(t, moves, 2)
	assert.Equal(t, "H1.1", moves[1][3])
	assert.Equal(t, "School Holidays", moves[1][15])

	importance := csvRows(t, cfg.ImportanceCSVPath)
	assert.Len(t, importance, 1+31)

	assert.Contains(t, out.String(), "OCCUPANCY MOVE SUGGESTIONS")
	assert.Contains(t, out.String(), "Jones")
}

func TestPipelineRunWithoutHolidayFile(t *testing.T) {
	cfg := testConfig(t, false)

	results, err := newPipeline(cfg, utils.NewNopLogger(), &bytes.Buffer{}).run(context.Background(), pipelineToday)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Empty(t, results[0].Holidays)
	require.Len(t, results[0].Moves, 1)
	assert.Equal(t, "1.1", results[0].Moves[0].SequenceID)
}

func TestPipelineErrors(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Source = "mongo"
	_, err := newPipeline(cfg, utils.NewNopLogger(), &bytes.Buffer{}).run(context.Background(), pipelineToday)
	assert.ErrorContains(t, err, "unknown source")

	cfg = testConfig(t, false)
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = newPipeline(cfg, utils.NewNopLogger(), &bytes.Buffer{}).run(context.Background(), pipelineToday)
	assert.ErrorContains(t, err, "load properties")
}

func TestApplyDefaultRegion(t *testing.T) {
	data := []models.PropertyData{
		{Property: models.Property{ID: 1}},
		{Property: models.Property{ID: 2, RegionCode: "VIC"}},
	}
	applyDefaultRegion(data, "NSW")
	assert.Equal(t, "NSW", data[0].Property.RegionCode)
	assert.Equal(t, "VIC", data[1].Property.RegionCode)
}

func TestResolveToday(t *testing.T) {
	todayArg = "2026-12-01"
	defer func() { todayArg = "" }()

	got, err := resolveToday()
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))

	todayArg = "tomorrow"
	_, err = resolveToday()
	assert.Error(t, err)
}
