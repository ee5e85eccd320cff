package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"occupancy-optimizer/config"
	"occupancy-optimizer/models"
	"occupancy-optimizer/services"
	"occupancy-optimizer/storage"
	"occupancy-optimizer/utils"
)

// pipeline is one analysis pass: load, analyse, export, report.
type pipeline struct {
	cfg       *config.Config
	logger    *utils.Logger
	out       io.Writer
	inventory storage.InventoryStore
}

func newPipeline(cfg *config.Config, logger *utils.Logger, out io.Writer) *pipeline {
	return &pipeline{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		inventory: storage.NewInventoryCache(1_000, cfg.InventoryCacheTTL),
	}
}

func (p *pipeline) openSource(ctx context.Context) (storage.PropertySource, error) {
	switch p.cfg.Source {
	case "postgres":
		retry := &utils.RetryConfig{
			MaxAttempts: p.cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      p.logger,
		}
		return storage.NewPostgresStore(ctx, p.cfg.DSN(), p.inventory, retry, p.logger)
	case "file", "":
		return storage.NewFileSource(p.cfg.InputPath, p.logger), nil
	}
	return nil, fmt.Errorf("unknown source %q (want file or postgres)", p.cfg.Source)
}

// run performs one pass for the given day and returns the per-property results.
func (p *pipeline) run(ctx context.Context, today time.Time) ([]models.PropertyResult, error) {
	started := time.Now()
	today = utils.Day(today)

	source, err := p.openSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	data, err := source.LoadProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	if len(data) == 0 {
		p.logger.Warn("No properties found in %s source", p.cfg.Source)
	}
	applyDefaultRegion(data, p.cfg.RegionCode)

	var holidays storage.HolidaySource = storage.NewHolidayFile(p.cfg.HolidayPath, p.logger)
	lookup := func(property models.Property, from, to time.Time) ([]models.HolidayPeriod, error) {
		return holidays.Holidays(ctx, property.RegionCode, from, to)
	}

	analyzer := services.NewAnalyzer(p.cfg.Analysis(), p.logger)
	results := analyzer.AnalyzeAll(data, lookup, today)

	if err := p.export(ctx, results); err != nil {
		p.logger.Error("Export failed: %v", err)
	}
	if mw, ok := source.(storage.MoveWriter); ok {
		if err := mw.WriteMoves(ctx, results); err != nil {
			p.logger.Error("Storing moves in %s failed: %v", p.cfg.Source, err)
		} else {
			p.logger.Info("Moves stored in %s (table: move_suggestions)", p.cfg.Source)
		}
	}

	insights := services.NewInsightService(p.logger)
	insights.Print(p.out, insights.Generate(results), results)

	p.logger.Duration("analysis pass", started)
	return results, nil
}

func (p *pipeline) export(ctx context.Context, results []models.PropertyResult) error {
	movesCSV, err := storage.NewMoveCSVWriter(p.cfg.MovesCSVPath)
	if err != nil {
		return err
	}
	var moves storage.MoveWriter = movesCSV
	defer moves.Close()
	if err := moves.WriteMoves(ctx, results); err != nil {
		return err
	}

	importanceCSV, err := storage.NewImportanceCSVWriter(p.cfg.ImportanceCSVPath)
	if err != nil {
		return err
	}
	var importance storage.ImportanceWriter = importanceCSV
	defer importance.Close()
	if err := importance.WriteImportance(ctx, results); err != nil {
		return err
	}

	p.logger.Info("Moves saved to %s, importance labels to %s", p.cfg.MovesCSVPath, p.cfg.ImportanceCSVPath)
	return nil
}

func applyDefaultRegion(data []models.PropertyData, region string) {
	if region == "" {
		return
	}
	for i := range data {
		if data[i].Property.RegionCode == "" {
			data[i].Property.RegionCode = region
		}
	}
}
