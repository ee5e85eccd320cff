package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

const topMoves = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(results []models.PropertyResult) *models.Summary {
	summary := &models.Summary{
		MovesByCategory: make(map[string]int),
		HighImportance:  make(map[string]int),
	}

	if len(results) == 0 {
		return summary
	}

	summary.Properties = len(results)

	var all []models.Move
	for _, r := range results {
		summary.SkippedRecords += len(r.Skipped)
		for _, c := range r.Categories {
			if c.Skipped {
				summary.SkippedCategory++
			}
		}
		for _, mv := range r.Moves {
			summary.TotalMoves++
			if mv.IsHolidayMove {
				summary.HolidayMoves++
			} else {
				summary.RegularMoves++
			}
			summary.TotalImprovement += mv.Improvement
			summary.MovesByCategory[categoryLabel(r.PropertyName, mv.CategoryName)]++
			all = append(all, mv)
		}

		names := categoryNames(r)
		for _, d := range r.Importance {
			if d.Level == models.StrategicHigh {
				summary.HighImportance[categoryLabel(r.PropertyName, names[d.CategoryID])]++
			}
		}
	}
	summary.TotalImprovement = round2(summary.TotalImprovement)

	// Top moves by raw improvement
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Improvement > all[j].Improvement
	})
	if len(all) > topMoves {
		summary.TopMoves = all[:topMoves]
	} else {
		summary.TopMoves = all
	}

	return summary
}

func (s *InsightService) Print(w io.Writer, sum *models.Summary, results []models.PropertyResult) {
	title := color.New(color.FgMagenta, color.Bold)
	heading := color.New(color.FgYellow, color.Bold)
	good := color.New(color.FgGreen, color.Bold)
	holiday := color.New(color.FgCyan)
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	title.Fprintf(w, "\n%s\n", sep)
	title.Fprintf(w, "  OCCUPANCY MOVE SUGGESTIONS\n")
	title.Fprintf(w, "%s\n\n", sep)

	// Overview
	heading.Fprintf(w, "  Overview\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Properties analysed  : %d\n", sum.Properties)
	fmt.Fprintf(w, "  Suggested moves      : %s (%d regular, %d holiday)\n",
		good.Sprintf("%d", sum.TotalMoves), sum.RegularMoves, sum.HolidayMoves)
	fmt.Fprintf(w, "  Total improvement    : %.2f\n", sum.TotalImprovement)
	fmt.Fprintf(w, "  Skipped records      : %d\n", sum.SkippedRecords)
	fmt.Fprintf(w, "  Skipped categories   : %d\n\n", sum.SkippedCategory)

	// Per property move lists
	for _, r := range results {
		heading.Fprintf(w, "  %s  (%s → %s)\n", r.PropertyName,
			utils.FormatDate(r.Regular.Start), utils.FormatDate(r.Regular.End))
		fmt.Fprintf(w, "  %s\n", thin)
		if len(r.Moves) == 0 {
			fmt.Fprintf(w, "  No moves suggested\n\n")
			continue
		}
		for _, mv := range r.Moves {
			line := fmt.Sprintf("  %-6s %-18s %s → %s  %-10s %s→%s  +%.2f",
				mv.SequenceID, truncate(mv.GuestLabel, 18),
				utils.FormatDate(mv.Arrival), utils.FormatDate(mv.Departure),
				truncate(mv.CategoryName, 10), mv.FromUnitName, mv.ToUnitName, mv.Improvement)
			if mv.IsHolidayMove {
				holiday.Fprintf(w, "%s  [%s, %s]\n", line, mv.HolidayName, mv.HolidayImportance)
			} else {
				fmt.Fprintln(w, line)
			}
		}
		fmt.Fprintln(w)
	}

	// Top moves across properties
	heading.Fprintf(w, "  Top moves\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(sum.TopMoves) == 0 {
		fmt.Fprintf(w, "  None\n")
	}
	for i, mv := range sum.TopMoves {
		fmt.Fprintf(w, "  %d. %-6s %-18s %-10s +%.2f\n", i+1,
			mv.SequenceID, truncate(mv.GuestLabel, 18), truncate(mv.CategoryName, 10), mv.Improvement)
	}
	fmt.Fprintln(w)

	// Moves per category
	heading.Fprintf(w, "  Moves by category\n")
	fmt.Fprintf(w, "  %s\n", thin)
	printCounts(w, sum.MovesByCategory)
	fmt.Fprintln(w)

	// High importance nights per category
	heading.Fprintf(w, "  High-importance nights by category\n")
	fmt.Fprintf(w, "  %s\n", thin)
	printCounts(w, sum.HighImportance)

	title.Fprintf(w, "\n%s\n\n", sep)
}

// printCounts draws one bar per label, largest first.
func printCounts(w io.Writer, counts map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintf(w, "  None\n")
		return
	}
	type catCount struct {
		name  string
		count int
	}
	var cats []catCount
	for name, cnt := range counts {
		cats = append(cats, catCount{name, cnt})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].count != cats[j].count {
			return cats[i].count > cats[j].count
		}
		return cats[i].name < cats[j].name
	})
	for _, cc := range cats {
		bar := strings.Repeat("█", cc.count)
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(cc.name, 28), bar, cc.count)
	}
}

func categoryNames(r models.PropertyResult) map[int64]string {
	names := make(map[int64]string)
	for _, c := range r.Categories {
		names[c.CategoryID] = c.CategoryName
	}
	return names
}

func categoryLabel(property, category string) string {
	return property + " / " + category
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
