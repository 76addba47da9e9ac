package report

import (
	"context"
	"fmt"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetRuns     = "Runs"
	SheetTotals   = "Totals"
	SheetFailures = "Failures"
)

// ExcelSink collects pipeline output into a workbook: one summary row per
// character, the full run matrix and per-dungeon totals, and a failures
// sheet for characters that could not be processed. The workbook is written
// to disk on Flush.
type ExcelSink struct {
	path   string
	file   *excelize.File
	logger zerolog.Logger

	summaryRow  int
	runsRow     int
	totalsRow   int
	failuresRow int
}

func NewExcelSink(cfg *config.Config, logger zerolog.Logger) (*ExcelSink, error) {
	file := excelize.NewFile()

	if err := file.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for _, sheet := range []string{SheetRuns, SheetTotals, SheetFailures} {
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create %s sheet: %w", sheet, err)
		}
	}

	headers := map[string][]any{
		SheetSummary:  {"Character", "Realm", "Race", "Class", "Spec", "Faction", "Total Score", "Worst Dungeon", "Worst Dungeon Score"},
		SheetRuns:     {"Character", "Dungeon", "Affix", "Key Level", "Completed", "Clear Time", "Par Time", "Remaining", "Score", "Category"},
		SheetTotals:   {"Character", "Dungeon", "Total Score"},
		SheetFailures: {"Character", "Realm", "Region", "Kind", "Message"},
	}
	for sheet, row := range headers {
		if err := file.SetSheetRow(sheet, "A1", &row); err != nil {
			return nil, fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}

	return &ExcelSink{
		path:        cfg.OutputPath,
		file:        file,
		logger:      logger,
		summaryRow:  2,
		runsRow:     2,
		totalsRow:   2,
		failuresRow: 2,
	}, nil
}

func (s *ExcelSink) WriteResult(ctx context.Context, result domain.CharacterResult) error {
	summary := result.Summary
	if err := s.setRow(SheetSummary, s.summaryRow, []any{
		summary.Name, summary.Realm, summary.Race, summary.Class, summary.Spec,
		summary.Faction, summary.TotalScore, summary.WorstDungeon, summary.WorstDungeonScore,
	}); err != nil {
		return err
	}
	s.summaryRow++

	for _, run := range result.Matrix {
		if err := s.setRow(SheetRuns, s.runsRow, []any{
			summary.Name, run.Dungeon, run.Affix, run.KeyLevel, run.Completed,
			run.ClearTime, run.ParTime, run.Remaining, run.Score, string(run.Category),
		}); err != nil {
			return err
		}
		s.runsRow++
	}

	for _, total := range result.Totals {
		if err := s.setRow(SheetTotals, s.totalsRow, []any{summary.Name, total.Dungeon, total.Score}); err != nil {
			return err
		}
		s.totalsRow++
	}

	s.logger.Debug().Str("name", summary.Name).Int("rows", len(result.Matrix)).Msg("result buffered into workbook")
	return nil
}

func (s *ExcelSink) WriteFailures(ctx context.Context, failures []domain.Failure) error {
	for _, failure := range failures {
		id := failure.Identity
		if err := s.setRow(SheetFailures, s.failuresRow, []any{
			id.Name, id.Realm, id.Region, string(failure.Kind), failure.Message,
		}); err != nil {
			return err
		}
		s.failuresRow++
	}
	return nil
}

func (s *ExcelSink) Flush(ctx context.Context) error {
	if err := s.file.SaveAs(s.path); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to save report workbook")
		return fmt.Errorf("failed to save report workbook: %w", err)
	}
	s.logger.Info().Str("path", s.path).Msg("report workbook saved")
	return s.file.Close()
}

func (s *ExcelSink) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address %s row %d: %w", sheet, row, err)
	}
	if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
