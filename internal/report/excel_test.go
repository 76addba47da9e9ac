package report

import (
	"context"
	"path/filepath"
	"testing"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func testResult() domain.CharacterResult {
	return domain.CharacterResult{
		Identity: domain.CharacterIdentity{Region: "us", Realm: "proudmoore", Name: "Thrall"},
		Matrix: domain.RunMatrix{
			{
				Dungeon:   "Court of Stars",
				Affix:     domain.AffixFortified,
				KeyLevel:  "12",
				Completed: "2026-08-12 18:30:45",
				ClearTime: "00:25:00",
				ParTime:   "00:30:00",
				Remaining: "00:05:00",
				Score:     152,
				Category:  domain.CategoryBest,
			},
			{
				Dungeon:   "Court of Stars",
				Affix:     domain.AffixTyrannical,
				KeyLevel:  domain.NotAttempted,
				Completed: domain.NotAttempted,
				ClearTime: domain.NotAttempted,
				ParTime:   domain.NotAttempted,
				Remaining: domain.NotAttempted,
				Score:     0,
				Category:  domain.CategoryNotDone,
			},
		},
		Totals: []domain.DungeonTotal{{Dungeon: "Court of Stars", Score: 152}},
		Summary: domain.ProfileSummary{
			Name:              "Thrall",
			Race:              "Orc",
			Class:             "Shaman",
			Spec:              "Enhancement",
			Faction:           "horde",
			Realm:             "Proudmoore",
			TotalScore:        152,
			WorstDungeon:      "Court of Stars",
			WorstDungeonScore: 152,
		},
	}
}

func TestExcelSinkWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	sink, err := NewExcelSink(&config.Config{OutputPath: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ctx := context.Background()
	if err := sink.WriteResult(ctx, testResult()); err != nil {
		t.Fatalf("write result: %v", err)
	}
	failures := []domain.Failure{{
		ID:       "f1",
		Identity: domain.CharacterIdentity{Region: "us", Realm: "proudmoore", Name: "Missingno"},
		Kind:     domain.FailureNotFound,
		Message:  "characters/profile returned 404",
	}}
	if err := sink.WriteFailures(ctx, failures); err != nil {
		t.Fatalf("write failures: %v", err)
	}
	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	cells := []struct {
		sheet string
		cell  string
		want  string
	}{
		{SheetSummary, "A1", "Character"},
		{SheetSummary, "A2", "Thrall"},
		{SheetSummary, "G2", "152"},
		{SheetSummary, "H2", "Court of Stars"},
		{SheetRuns, "B2", "Court of Stars"},
		{SheetRuns, "C2", domain.AffixFortified},
		{SheetRuns, "H2", "00:05:00"},
		{SheetRuns, "J2", string(domain.CategoryBest)},
		{SheetRuns, "D3", domain.NotAttempted},
		{SheetRuns, "J3", string(domain.CategoryNotDone)},
		{SheetTotals, "B2", "Court of Stars"},
		{SheetTotals, "C2", "152"},
		{SheetFailures, "A2", "Missingno"},
		{SheetFailures, "D2", string(domain.FailureNotFound)},
	}
	for _, tc := range cells {
		got, err := file.GetCellValue(tc.sheet, tc.cell)
		if err != nil {
			t.Fatalf("read %s!%s: %v", tc.sheet, tc.cell, err)
		}
		if got != tc.want {
			t.Errorf("%s!%s = %q, want %q", tc.sheet, tc.cell, got, tc.want)
		}
	}
}

func TestExcelSinkMultipleResultsAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	sink, err := NewExcelSink(&config.Config{OutputPath: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ctx := context.Background()
	first := testResult()
	second := testResult()
	second.Summary.Name = "Jaina"
	if err := sink.WriteResult(ctx, first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := sink.WriteResult(ctx, second); err != nil {
		t.Fatalf("write second: %v", err)
	}
	if err := sink.WriteFailures(ctx, nil); err != nil {
		t.Fatalf("write failures: %v", err)
	}
	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	gotFirst, _ := file.GetCellValue(SheetSummary, "A2")
	gotSecond, _ := file.GetCellValue(SheetSummary, "A3")
	if gotFirst != "Thrall" || gotSecond != "Jaina" {
		t.Errorf("summary rows = %q, %q; want Thrall, Jaina", gotFirst, gotSecond)
	}

	// Second character's runs land below the first character's block.
	gotRun, _ := file.GetCellValue(SheetRuns, "A4")
	if gotRun != "Jaina" {
		t.Errorf("runs A4 = %q, want Jaina", gotRun)
	}
}
