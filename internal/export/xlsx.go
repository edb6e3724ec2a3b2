// Package export renders conversation reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tiagoarodrigues55/moveo-report/internal/aggregate"
)

// Meta describes the report being exported.
type Meta struct {
	AccountSlug string
	DisplayName string
	Period      string
	Total       int
	GeneratedAt time.Time
}

const summarySheet = "Summary"

var (
	bucketHeader   = []any{"bucket", "count", "pct_of_total", "total_value", "avg_value", "human_attendance", "human_attendance_pct"}
	linearHeader   = []any{"interactions_gt", "label", "count", "total_value", "avg_value", "human_attendance"}
	presenceHeader = []any{"tag", "count", "percentage", "total_value", "avg_value"}
	tagsHeader     = append([]any{"tag"}, bucketHeader...)
)

// WriteXLSX writes report as a workbook with one sheet per report section.
func WriteXLSX(w io.Writer, meta Meta, report aggregate.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	sw := sheetWriter{f: f, bold: bold}
	sw.rows(summarySheet, nil, [][]any{
		{"account_slug", meta.AccountSlug},
		{"display_name", meta.DisplayName},
		{"period", meta.Period},
		{"total", meta.Total},
		{"generated_at", meta.GeneratedAt.UTC().Format(time.RFC3339)},
	})

	total := report.Interactions.Total.Count
	sw.rows("Interactions", bucketHeader, bucketRows(report.Interactions.BucketGroup, total, nil))
	sw.rows("Linear", linearHeader, linearRows(report.Interactions.Linear))
	sw.rows("TagKeyLinear", linearHeader, linearRows(report.TagKeyLinear))

	presence := make([][]any, 0, len(report.TagPresence))
	for _, p := range report.TagPresence {
		presence = append(presence, []any{p.Tag, p.Count, p.Percentage, p.TotalValue, p.AvgValue})
	}
	sw.rows("TagPresence", presenceHeader, presence)

	var tags [][]any
	for _, tb := range report.Tags {
		tags = append(tags, bucketRows(tb.Buckets, tb.Buckets.Total.Count, []any{tb.Tag})...)
	}
	sw.rows("Tags", tagsHeader, tags)

	if sw.err != nil {
		return sw.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so sheets can be written without
// checking after every call.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (sw *sheetWriter) rows(sheet string, header []any, rows [][]any) {
	if sw.err != nil {
		return
	}
	if sheet != summarySheet {
		if _, err := sw.f.NewSheet(sheet); err != nil {
			sw.err = fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			return
		}
	}

	row := 1
	if header != nil {
		if err := sw.setRow(sheet, row, header); err != nil {
			sw.err = err
			return
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := sw.f.SetCellStyle(sheet, "A1", last, sw.bold); err != nil {
			sw.err = fmt.Errorf("failed to style %s header: %w", sheet, err)
			return
		}
		row++
	}
	for _, values := range rows {
		if err := sw.setRow(sheet, row, values); err != nil {
			sw.err = err
			return
		}
		row++
	}
}

func (sw *sheetWriter) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func bucketRows(g aggregate.BucketGroup, population int, prefix []any) [][]any {
	named := []struct {
		name string
		s    aggregate.BucketStats
	}{
		{"total", g.Total},
		{"more_than_3", g.MoreThan3},
		{"more_than_5", g.MoreThan5},
		{"more_than_7", g.MoreThan7},
		{"more_than_10", g.MoreThan10},
	}

	out := make([][]any, 0, len(named))
	for _, n := range named {
		row := append(append([]any{}, prefix...),
			n.name, n.s.Count, share(n.s.Count, population), n.s.TotalValue, n.s.AvgValue,
			n.s.HumanAttendance, n.s.HumanAttendancePercentage)
		out = append(out, row)
	}
	return out
}

func linearRows(points []aggregate.LinearPoint) [][]any {
	out := make([][]any, 0, len(points))
	for _, p := range points {
		out = append(out, []any{p.Interactions, p.Label, p.Count, p.TotalValue, p.AvgValue, p.HumanAttendance})
	}
	return out
}

func share(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
