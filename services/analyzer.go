package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// HolidayLookup supplies the holiday periods relevant to a property between
// two dates. An error degrades the run to regular-window analysis.
type HolidayLookup func(property models.Property, from, to time.Time) ([]models.HolidayPeriod, error)

// Analyzer runs the full move analysis for a property: the regular window,
// every holiday window, and the merge of both.
type Analyzer struct {
	cfg        AnalysisConfig
	cleaner    *Cleaner
	classifier *StrategicClassifier
	optimizer  *SequentialOptimizer
	holidays   *HolidayWindowCalculator
	merger     *MoveMerger
	logger     *utils.Logger
}

// NewAnalyzer wires the analysis components from one set of constants.
func NewAnalyzer(cfg AnalysisConfig, logger *utils.Logger) *Analyzer {
	cfg = cfg.withDefaults()
	scorer := NewFragmentationScorer(cfg.FragmentationPenalty, cfg.BonusScale)
	search := NewMoveSearch(scorer, logger)

	return &Analyzer{
		cfg:        cfg,
		cleaner:    NewCleaner(logger),
		classifier: NewStrategicClassifier(cfg),
		optimizer:  NewSequentialOptimizer(search, scorer, cfg.MaxIterations, logger),
		holidays:   NewHolidayWindowCalculator(cfg.HolidayHorizonDays, cfg.HolidayBufferDays, logger),
		merger:     NewMoveMerger(logger),
		logger:     logger,
	}
}

// Config returns the constants the analyzer was built with.
func (a *Analyzer) Config() AnalysisConfig { return a.cfg }

// RegularWindow returns the near-term window starting today.
func (a *Analyzer) RegularWindow(today time.Time) models.AnalysisWindow {
	start := utils.Day(today)
	return models.AnalysisWindow{
		Start: start,
		End:   utils.AddDays(start, a.cfg.RegularWindowDays-1),
		Kind:  models.WindowRegular,
	}
}

// HolidayHorizon returns the last date holidays are relevant for.
func (a *Analyzer) HolidayHorizon(today time.Time) time.Time {
	return a.holidays.Horizon(utils.Day(today))
}

// AnalyzeAll analyses properties in parallel. Each run owns its snapshots;
// results are returned in input order.
func (a *Analyzer) AnalyzeAll(inputs []models.PropertyData, lookup HolidayLookup, today time.Time) []models.PropertyResult {
	results := make([]models.PropertyResult, len(inputs))
	pool := utils.NewWorkerPool(a.cfg.MaxConcurrency)

	for i := range inputs {
		pool.Submit(func() {
			data := inputs[i]
			var holidays []models.HolidayPeriod
			if lookup != nil {
				var err error
				holidays, err = lookup(data.Property, utils.Day(today), a.HolidayHorizon(today))
				if err != nil {
					a.logger.Error("[analyzer] Holiday data unavailable for property %d, analysing regular window only: %v",
						data.Property.ID, err)
					holidays = nil
				}
			}
			results[i] = a.Analyze(data, holidays, today)
		})
	}
	pool.Wait()
	return results
}

// Analyze runs one property end to end. It never fails: bad records and
// unsuitable categories are reported on the result.
func (a *Analyzer) Analyze(data models.PropertyData, holidays []models.HolidayPeriod, today time.Time) models.PropertyResult {
	started := time.Now()
	property := data.Property
	today = utils.Day(today)

	result := models.PropertyResult{
		RunID:        uuid.NewString(),
		PropertyID:   property.ID,
		PropertyName: property.Name,
		Today:        today,
		Regular:      a.RegularWindow(today),
	}
	log := a.logger.With("property", property.ID).With("run_id", result.RunID)
	log.Info("[analyzer] Analysing %q: %d categories, %d raw reservations",
		property.Name, len(property.Categories), len(data.Reservations))

	reservations, skipped := a.cleaner.Clean(property, data.Reservations)
	skips := newSkipLog(skipped)

	categories := append([]models.Category(nil), property.Categories...)
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	regular := a.runWindow(property, categories, result.Regular, reservations, skips, log)
	result.Categories = append(result.Categories, regular.categories...)
	importance := newImportanceLog()
	importance.add(regular.importance)

	var holidayMoves []models.Move
	result.Holidays = a.holidays.Windows(today, property.RegionCode, holidays)
	for _, w := range result.Holidays {
		run := a.runWindow(property, categories, w, reservations, skips, log)
		result.Categories = append(result.Categories, run.categories...)
		holidayMoves = append(holidayMoves, run.moves...)
		importance.add(run.importance)
	}

	merged := a.merger.Merge(regular.moves, holidayMoves, result.Regular, reservations)
	result.Moves = merged.Moves
	result.Dropped = merged.Duplicates + merged.Conflicts
	result.Importance = importance.items
	result.Skipped = skips.items

	log.Info("[analyzer] %q done: %d moves (%d regular, %d holiday candidates, %d dropped), %d skipped records",
		property.Name, len(result.Moves), len(regular.moves), len(holidayMoves), result.Dropped, len(result.Skipped))
	log.Duration("analyze property", started)
	return result
}

type windowRun struct {
	moves      []models.Move
	categories []models.CategoryResult
	importance []models.DailyImportance
}

func (a *Analyzer) runWindow(property models.Property, categories []models.Category, window models.AnalysisWindow,
	reservations []models.Reservation, skips *skipLog, log *utils.Logger) windowRun {
	var out windowRun
	prefix := ""
	if window.Kind == models.WindowHoliday {
		prefix = "H"
	}

	for i, cat := range categories {
		cr := models.CategoryResult{CategoryID: cat.ID, CategoryName: cat.Name, Window: window}

		snap, skipped, err := BuildSnapshot(cat, window, reservations, a.logger)
		if err != nil {
			cr.Skipped = true
			cr.SkipReason = err.Error()
			log.Info("[analyzer] No analysis performed for category %d (%s) in %s: %v", cat.ID, cat.Name, window, err)
			out.categories = append(out.categories, cr)
			continue
		}
		skips.add(skipped)

		assessment := a.classifier.Classify(snap)
		opt := a.optimizer.Optimize(snap, OptimizationRun{
			PropertyID:     property.ID,
			CategoryIndex:  i + 1,
			SequencePrefix: prefix,
		})

		for _, mv := range opt.Moves {
			from := utils.DaysBetween(window.Start, mv.Arrival)
			to := utils.DaysBetween(window.Start, mv.Departure)
			mv.Strategic = assessment.LevelBetween(from, to)
			mv.PriorityScore = mv.Improvement * mv.Strategic.Weight()
			if h := window.Holiday; h != nil {
				mv.IsHolidayMove = true
				mv.HolidayName = h.Name
				mv.HolidayType = h.Type
				mv.HolidayImportance = h.Importance
			}
			out.moves = append(out.moves, mv)
		}

		cr.InitialScore = opt.InitialScore
		cr.FinalScore = opt.FinalScore
		cr.Moves = len(opt.Moves)
		cr.IterationCap = opt.IterationCap
		cr.Sufficiency = assessment.Sufficiency
		out.categories = append(out.categories, cr)
		out.importance = append(out.importance, assessment.Daily...)
	}
	return out
}

// skipLog collects skipped records once per reservation.
type skipLog struct {
	seen  map[int64]struct{}
	items []models.SkippedRecord
}

func newSkipLog(initial []models.SkippedRecord) *skipLog {
	l := &skipLog{seen: make(map[int64]struct{})}
	l.add(initial)
	return l
}

func (l *skipLog) add(records []models.SkippedRecord) {
	for _, r := range records {
		if _, ok := l.seen[r.ReservationID]; ok {
			continue
		}
		l.seen[r.ReservationID] = struct{}{}
		l.items = append(l.items, r)
	}
}

// importanceLog keeps the first label seen for each category and date.
type importanceLog struct {
	seen  map[string]struct{}
	items []models.DailyImportance
}

func newImportanceLog() *importanceLog {
	return &importanceLog{seen: make(map[string]struct{})}
}

func (l *importanceLog) add(days []models.DailyImportance) {
	for _, d := range days {
		key := fmt.Sprintf("%d|%s", d.CategoryID, utils.FormatDate(d.Date))
		if _, ok := l.seen[key]; ok {
			continue
		}
		l.seen[key] = struct{}{}
		l.items = append(l.items, d)
	}
}
