package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

var (
	moveHeader = []string{
		"run_id", "property_id", "property", "sequence_id", "category", "reservation_id", "guest",
		"status", "arrival", "departure", "from_unit", "to_unit", "improvement", "strategic",
		"priority_score", "holiday", "holiday_importance", "reasoning",
	}
	importanceHeader = []string{"property_id", "property", "category_id", "date", "level", "score"}
)

// csvFile is a header-first CSV file that is safe for concurrent use.
type csvFile struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// newCSVFile creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func newCSVFile(path string, header []string) (*csvFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &csvFile{file: f, writer: w}, nil
}

func (c *csvFile) writeRows(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *csvFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

// MoveCSVWriter exports the final move lists, one row per move in
// application order.
type MoveCSVWriter struct {
	*csvFile
}

func NewMoveCSVWriter(path string) (*MoveCSVWriter, error) {
	f, err := newCSVFile(path, moveHeader)
	if err != nil {
		return nil, err
	}
	return &MoveCSVWriter{f}, nil
}

func (w *MoveCSVWriter) WriteMoves(ctx context.Context, results []models.PropertyResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rows [][]string
	for _, r := range results {
		for _, mv := range r.Moves {
			holiday, importance := "", ""
			if mv.IsHolidayMove {
				holiday = mv.HolidayName
				importance = mv.HolidayImportance.String()
			}
			rows = append(rows, []string{
				r.RunID,
				strconv.FormatInt(r.PropertyID, 10),
				r.PropertyName,
				mv.SequenceID,
				mv.CategoryName,
				strconv.FormatInt(mv.ReservationID, 10),
				mv.GuestLabel,
				mv.Status.String(),
				utils.FormatDate(mv.Arrival),
				utils.FormatDate(mv.Departure),
				mv.FromUnitName,
				mv.ToUnitName,
				strconv.FormatFloat(mv.Improvement, 'f', 2, 64),
				mv.Strategic.String(),
				strconv.FormatFloat(mv.PriorityScore, 'f', 2, 64),
				holiday,
				importance,
				mv.Reasoning,
			})
		}
	}
	return w.writeRows(rows)
}

// ImportanceCSVWriter exports the per-night strategic labels.
type ImportanceCSVWriter struct {
	*csvFile
}

func NewImportanceCSVWriter(path string) (*ImportanceCSVWriter, error) {
	f, err := newCSVFile(path, importanceHeader)
	if err != nil {
		return nil, err
	}
	return &ImportanceCSVWriter{f}, nil
}

func (w *ImportanceCSVWriter) WriteImportance(ctx context.Context, results []models.PropertyResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var rows [][]string
	for _, r := range results {
		for _, d := range r.Importance {
			rows = append(rows, []string{
				strconv.FormatInt(r.PropertyID, 10),
				r.PropertyName,
				strconv.FormatInt(d.CategoryID, 10),
				utils.FormatDate(d.Date),
				d.Level.String(),
				strconv.FormatFloat(d.Score, 'f', 3, 64),
			})
		}
	}
	return w.writeRows(rows)
}
