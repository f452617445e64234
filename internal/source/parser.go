// Package source reads ledger exports (CSV or Excel) and normalizes them
// into posting ledgers.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/varcop/internal/model"

	"github.com/xuri/excelize/v2"
)

// ReadResult holds the output of reading a single export file.
type ReadResult struct {
	Path     string
	Ledger   model.Ledger
	Rows     int    // data rows seen, blank lines excluded
	Dropped  int    // rows skipped in lenient mode
	Encoding string // text encoding for CSV, "xlsx" for workbooks
}

// ReadFile reads and normalizes one export file.
func ReadFile(path string, m ColumnMapping, opts Options) (*ReadResult, error) {
	var (
		records  [][]string
		encoding string
		err      error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path)
		encoding = "xlsx"
	default:
		records, encoding, err = readDelimited(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := Normalize(records, m, opts)
	if err != nil {
		var de *model.DataError
		if errors.As(err, &de) {
			de.Source = path
		}
		return nil, err
	}
	res.Path = path
	res.Encoding = encoding
	return res, nil
}

func readDelimited(path string) ([][]string, string, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own arguments
	if err != nil {
		return nil, "", err
	}

	data, encoding := decodeText(raw)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, encoding, fmt.Errorf("parsing csv: %w", err)
	}
	return records, encoding, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// columnIndex resolves mapped headers to record positions. -1 means absent.
type columnIndex struct {
	account, amount, accountName, postingDate, text, documentNo int
	dims                                                        []dimensionSpec
	dimIdx                                                      []int
}

// Normalize turns raw records (first record is the header) into a ledger.
// A missing account or amount column is a DataError; so is a bad value in a
// data row unless opts.Lenient is set, in which case the row is dropped.
func Normalize(records [][]string, m ColumnMapping, opts Options) (*ReadResult, error) {
	res := &ReadResult{}
	if len(records) == 0 {
		return nil, &model.DataError{Op: "read", Field: m.Account, Err: model.ErrMissingColumn}
	}

	idx, err := resolveColumns(records[0], m)
	if err != nil {
		return nil, err
	}

	res.Ledger.Schema = model.Schema{
		HasAccountName: idx.accountName >= 0,
		HasPostingDate: idx.postingDate >= 0,
		HasText:        idx.text >= 0,
		HasDocumentNo:  idx.documentNo >= 0,
	}
	for i, d := range idx.dims {
		if idx.dimIdx[i] >= 0 {
			res.Ledger.Schema.Dimensions = append(res.Ledger.Schema.Dimensions, d.name)
		}
	}

	decimal := opts.Decimal
	if decimal == "" || decimal == DecimalAuto {
		decimal = detectFileDecimal(records[1:], idx.amount)
	}

	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		res.Rows++
		line := i + 2 // header is line 1

		p, err := normalizeRow(rec, idx, opts.Sign, decimal)
		if err != nil {
			if opts.Lenient {
				res.Dropped++
				continue
			}
			err.Row = line
			return nil, err
		}
		res.Ledger.Postings = append(res.Ledger.Postings, p)
	}

	return res, nil
}

func resolveColumns(header []string, m ColumnMapping) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	idx := columnIndex{
		account:     find(m.Account),
		amount:      find(m.Amount),
		accountName: find(m.AccountName),
		postingDate: find(m.PostingDate),
		text:        find(m.Text),
		documentNo:  find(m.DocumentNo),
		dims:        m.dimensionSpecs(),
	}
	for _, d := range idx.dims {
		idx.dimIdx = append(idx.dimIdx, find(d.header))
	}

	if idx.account < 0 {
		return idx, &model.DataError{Op: "read", Field: m.Account, Err: model.ErrMissingColumn}
	}
	if idx.amount < 0 {
		return idx, &model.DataError{Op: "read", Field: m.Amount, Err: model.ErrMissingColumn}
	}
	return idx, nil
}

// detectFileDecimal picks the decimal style from the first amount that
// implies one, so "1.000" and "1.234,50" in one file read the same way.
// It returns DecimalAuto when no amount decides.
func detectFileDecimal(records [][]string, amountCol int) Decimal {
	for _, rec := range records {
		if d := DetectDecimal(cell(rec, amountCol)); d != DecimalAuto {
			return d
		}
	}
	return DecimalAuto
}

func normalizeRow(rec []string, idx columnIndex, sign SignMode, decimal Decimal) (model.Posting, *model.DataError) {
	var p model.Posting

	p.Account = cell(rec, idx.account)
	if p.Account == "" {
		return p, &model.DataError{Op: "read", Field: "account", Err: model.ErrEmptyAccount}
	}

	rawAmount := cell(rec, idx.amount)
	amount, err := ParseAmountAs(rawAmount, decimal)
	if err != nil {
		return p, &model.DataError{Op: "read", Field: "amount", Value: rawAmount, Err: err}
	}
	p.Amount = sign.Apply(amount)

	if raw := cell(rec, idx.postingDate); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			return p, &model.DataError{Op: "read", Field: "posting_date", Value: raw, Err: err}
		}
		p.PostingDate = d
	}

	p.AccountName = cell(rec, idx.accountName)
	p.Text = cell(rec, idx.text)
	p.DocumentNo = cell(rec, idx.documentNo)

	for i, d := range idx.dims {
		v := cell(rec, idx.dimIdx[i])
		if v == "" {
			continue
		}
		if p.Dimensions == nil {
			p.Dimensions = make(map[string]string, len(idx.dims))
		}
		p.Dimensions[d.name] = v
	}

	return p, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
