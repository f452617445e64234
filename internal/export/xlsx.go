package export

import (
	"fmt"
	"io"
	"math"

	"github.com/theirongolddev/varcop/internal/model"

	"github.com/xuri/excelize/v2"
)

// Built-in Excel number formats.
const (
	numFmtAmount  = 4  // #,##0.00
	numFmtPercent = 10 // 0.00%
)

type sheetWriter struct {
	f       *excelize.File
	header  int
	amount  int
	percent int
}

// WriteXLSX writes r as a workbook with Summary, Variances, Material and
// Drivers sheets, plus a sheet for the dimension summary when present.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := newSheetWriter(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName(f.GetSheetName(0), "Summary"); err != nil {
		return err
	}
	if err := sw.summary(r); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := sw.variances("Variances", r.Variances, nil); err != nil {
		return fmt.Errorf("variances sheet: %w", err)
	}

	rules := make(map[string]string, len(r.Details))
	for _, d := range r.Details {
		rules[d.Account] = d.Rules
	}
	if err := sw.variances("Material", r.Material, rules); err != nil {
		return fmt.Errorf("material sheet: %w", err)
	}
	if err := sw.drivers(r); err != nil {
		return fmt.Errorf("drivers sheet: %w", err)
	}
	if r.Dimension != "" && len(r.DimensionSummary) > 0 {
		if err := sw.dimension(r); err != nil {
			return fmt.Errorf("dimension sheet: %w", err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	sw := &sheetWriter{f: f}
	var err error
	if sw.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if sw.amount, err = f.NewStyle(&excelize.Style{NumFmt: numFmtAmount}); err != nil {
		return nil, err
	}
	if sw.percent, err = f.NewStyle(&excelize.Style{NumFmt: numFmtPercent}); err != nil {
		return nil, err
	}
	return sw, nil
}

// table writes a header row and data rows starting at A1.
func (sw *sheetWriter) table(sheet string, headers []any, rows [][]any) error {
	if err := sw.f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := sw.f.SetCellStyle(sheet, "A1", last, sw.header); err != nil {
		return err
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return sw.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// styleCols applies a style to whole data columns (1-based).
func (sw *sheetWriter) styleCols(sheet string, nRows, style int, cols ...int) error {
	if nRows == 0 {
		return nil
	}
	for _, c := range cols {
		top, _ := excelize.CoordinatesToCellName(c, 2)
		bottom, _ := excelize.CoordinatesToCellName(c, nRows+1)
		if err := sw.f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return err
		}
	}
	return nil
}

func (sw *sheetWriter) summary(r *Report) error {
	const sheet = "Summary"
	delta := r.CurrentTotal - r.PriorTotal
	var deltaPct any = ""
	if r.PriorTotal != 0 {
		deltaPct = delta / math.Abs(r.PriorTotal)
	}

	rows := [][]any{
		{"Report ID", r.ID},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04 MST")},
		{"Prior", r.PriorLabel},
		{"Current", r.CurrentLabel},
		{"Prior total", r.PriorTotal},
		{"Current total", r.CurrentTotal},
		{"Total delta", delta},
		{"Total delta %", deltaPct},
		{"Accounts", len(r.Variances)},
		{"Material accounts", len(r.Material)},
		{"Min abs delta", threshold(r.Materiality.MinAbsDelta)},
		{"Min pct delta", threshold(r.Materiality.MinPctDelta)},
		{"Min base", threshold(r.Materiality.MinBase)},
		{"Min share of total", threshold(r.Materiality.MinShareTotal)},
	}
	if err := sw.table(sheet, []any{"Metric", "Value"}, rows); err != nil {
		return err
	}
	for _, cell := range []string{"B6", "B7", "B8"} {
		if err := sw.f.SetCellStyle(sheet, cell, cell, sw.amount); err != nil {
			return err
		}
	}
	if err := sw.f.SetCellStyle(sheet, "B9", "B9", sw.percent); err != nil {
		return err
	}
	return sw.f.SetColWidth(sheet, "A", "A", 22)
}

func (sw *sheetWriter) variances(sheet string, vs []model.AccountVariance, rules map[string]string) error {
	if _, err := sw.f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []any{"Account", "Name", "Prior", "Current", "Delta", "Delta %", "|Delta|", "Share"}
	if rules != nil {
		headers = append(headers, "Rules")
	}
	rows := make([][]any, 0, len(vs))
	for _, v := range vs {
		var pct any = ""
		if v.DeltaPct != nil {
			pct = *v.DeltaPct
		}
		row := []any{v.Account, v.AccountName, v.Prior, v.Current, v.Delta, pct, v.AbsDelta, v.ShareOfTotalAbsDelta}
		if rules != nil {
			row = append(row, rules[v.Account])
		}
		rows = append(rows, row)
	}

	if err := sw.table(sheet, headers, rows); err != nil {
		return err
	}
	if err := sw.styleCols(sheet, len(rows), sw.amount, 3, 4, 5, 7); err != nil {
		return err
	}
	if err := sw.styleCols(sheet, len(rows), sw.percent, 6, 8); err != nil {
		return err
	}
	return sw.f.SetColWidth(sheet, "B", "B", 30)
}

func (sw *sheetWriter) drivers(r *Report) error {
	const sheet = "Drivers"
	if _, err := sw.f.NewSheet(sheet); err != nil {
		return err
	}

	var rows [][]any
	for _, d := range r.Details {
		for _, dr := range d.Drivers {
			rows = append(rows, []any{d.Account, dr.Dimension, dr.Value, dr.Prior, dr.Current, dr.Delta, dr.Share})
		}
	}
	headers := []any{"Account", "Dimension", "Value", "Prior", "Current", "Delta", "Share"}
	if err := sw.table(sheet, headers, rows); err != nil {
		return err
	}
	if err := sw.styleCols(sheet, len(rows), sw.amount, 4, 5, 6); err != nil {
		return err
	}
	return sw.styleCols(sheet, len(rows), sw.percent, 7)
}

func (sw *sheetWriter) dimension(r *Report) error {
	sheet := "By " + r.Dimension
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if _, err := sw.f.NewSheet(sheet); err != nil {
		return err
	}

	rows := make([][]any, 0, len(r.DimensionSummary))
	for _, dr := range r.DimensionSummary {
		rows = append(rows, []any{dr.Value, dr.Prior, dr.Current, dr.Delta, dr.Share})
	}
	if err := sw.table(sheet, []any{r.Dimension, "Prior", "Current", "Delta", "Share"}, rows); err != nil {
		return err
	}
	if err := sw.styleCols(sheet, len(rows), sw.amount, 2, 3, 4); err != nil {
		return err
	}
	return sw.styleCols(sheet, len(rows), sw.percent, 5)
}

// threshold renders a disabled (+Inf) threshold as text; Excel has no Inf.
func threshold(v float64) any {
	if math.IsInf(v, 1) {
		return "off"
	}
	return v
}
