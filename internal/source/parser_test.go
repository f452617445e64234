package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/varcop/internal/model"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1234.5", 1234.5},
		{"1.234,50", 1234.5},
		{"1,234.50", 1234.5},
		{"-12,5", -12.5},
		{"(123.45)", -123.45},
		{"1.234,50-", -1234.5},
		{"1 234,50 €", 1234.5},
		{"1,000,000", 1000000},
		{"1.000.000", 1000000},
		{"$1,234.00", 1234},
		{"  42 ", 42},
		{"0,125", 0.125},
		{"1234,567", 1234.567},
		{"-0.5", -0.5},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "NaN", "Inf", "-inf", "12a"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) succeeded, want error", in)
		}
	}
}

func TestParseAmountAmbiguous(t *testing.T) {
	for _, in := range []string{"1.000", "12,500", "$1,234", "-1.000"} {
		if _, err := ParseAmount(in); !errors.Is(err, model.ErrAmbiguousAmount) {
			t.Errorf("ParseAmount(%q) err = %v, want ErrAmbiguousAmount", in, err)
		}
	}
}

func TestParseAmountAs(t *testing.T) {
	tests := []struct {
		in   string
		d    Decimal
		want float64
	}{
		{"1.000", DecimalComma, 1000},
		{"12,500", DecimalComma, 12.5},
		{"0,125", DecimalComma, 0.125},
		{"1.000.000", DecimalComma, 1000000},
		{"1.000", DecimalDot, 1},
		{"12,500", DecimalDot, 12500},
		{"-1,234.50", DecimalDot, -1234.5},
	}
	for _, tt := range tests {
		got, err := ParseAmountAs(tt.in, tt.d)
		if err != nil {
			t.Errorf("ParseAmountAs(%q, %s) error: %v", tt.in, tt.d, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmountAs(%q, %s) = %v, want %v", tt.in, tt.d, got, tt.want)
		}
	}

	// Grouping that doesn't fit the style is rejected, not reinterpreted.
	for _, tt := range []struct {
		in string
		d  Decimal
	}{
		{"1,234.50", DecimalComma},
		{"1.5", DecimalComma},
		{"12,50", DecimalDot},
		{"1.234,50", DecimalDot},
	} {
		if _, err := ParseAmountAs(tt.in, tt.d); !errors.Is(err, model.ErrBadAmount) {
			t.Errorf("ParseAmountAs(%q, %s) err = %v, want ErrBadAmount", tt.in, tt.d, err)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	if d, err := ParseDecimal(""); err != nil || d != DecimalAuto {
		t.Errorf("ParseDecimal(\"\") = %v, %v, want auto", d, err)
	}
	if d, err := ParseDecimal(","); err != nil || d != DecimalComma {
		t.Errorf("ParseDecimal(,) = %v, %v, want comma", d, err)
	}
	if _, err := ParseDecimal("space"); err == nil {
		t.Error("ParseDecimal(space) succeeded, want error")
	}
}

func TestNormalizeDecimalPerFile(t *testing.T) {
	header := []string{"account", "amount"}

	// One unambiguous amount decides the whole file.
	res, err := Normalize([][]string{header, {"4000", "1.000"}, {"4000", "1.234,50"}}, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := res.Ledger.Postings[0].Amount; got != 1000 {
		t.Errorf("1.000 in a comma file = %v, want 1000", got)
	}

	res, err = Normalize([][]string{header, {"4000", "1.000"}, {"4000", "12.50"}}, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := res.Ledger.Postings[0].Amount; got != 1 {
		t.Errorf("1.000 in a dot file = %v, want 1", got)
	}

	// Nothing decides: fail instead of guessing.
	_, err = Normalize([][]string{header, {"4000", "1.000"}, {"5000", "12,500"}}, DefaultMapping(), Options{})
	var de *model.DataError
	if !errors.As(err, &de) || !errors.Is(err, model.ErrAmbiguousAmount) {
		t.Fatalf("err = %v, want DataError wrapping ErrAmbiguousAmount", err)
	}
	if de.Row != 2 {
		t.Errorf("Row = %d, want 2", de.Row)
	}

	res, err = Normalize([][]string{header, {"4000", "1.000"}, {"5000", "12,500"}}, DefaultMapping(), Options{Decimal: DecimalComma})
	if err != nil {
		t.Fatalf("Normalize with comma: %v", err)
	}
	if a, b := res.Ledger.Postings[0].Amount, res.Ledger.Postings[1].Amount; a != 1000 || b != 12.5 {
		t.Errorf("amounts = %v, %v, want 1000, 12.5", a, b)
	}
}

func TestNormalizeStripsHeaderBOM(t *testing.T) {
	records := [][]string{
		{"\ufeffaccount", "amount"},
		{"4000", "10"},
	}
	res, err := Normalize(records, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(res.Ledger.Postings) != 1 || res.Ledger.Postings[0].Account != "4000" {
		t.Errorf("postings = %+v", res.Ledger.Postings)
	}
}

func TestNormalizeWithoutPostingDate(t *testing.T) {
	records := [][]string{
		{"account", "amount", "text"},
		{"4000", "10", "rent"},
	}
	res, err := Normalize(records, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Ledger.Schema.HasPostingDate {
		t.Error("HasPostingDate = true, want false")
	}
	if len(res.Ledger.Postings) != 1 || !res.Ledger.Postings[0].PostingDate.IsZero() {
		t.Errorf("postings = %+v, want one with a zero date", res.Ledger.Postings)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-31", "31.03.2024", "03/31/2024", "2024-03-31T10:00:00Z"} {
		d, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", in, err)
			continue
		}
		if d.Year() != 2024 || d.Month() != 3 || d.Day() != 31 {
			t.Errorf("ParseDate(%q) = %v, want 2024-03-31", in, d)
		}
	}
	if _, err := ParseDate("yesterday"); !errors.Is(err, model.ErrBadDate) {
		t.Errorf("ParseDate(yesterday) err = %v, want ErrBadDate", err)
	}
}

func TestSignMode(t *testing.T) {
	if got := SignInvert.Apply(5); got != -5 {
		t.Errorf("invert(5) = %v, want -5", got)
	}
	if got := SignAbs.Apply(-5); got != 5 {
		t.Errorf("abs(-5) = %v, want 5", got)
	}
	if got := SignAsIs.Apply(-5); got != -5 {
		t.Errorf("as_is(-5) = %v, want -5", got)
	}
	if _, err := ParseSignMode("flip"); err == nil {
		t.Error("ParseSignMode(flip) succeeded, want error")
	}
	if m, err := ParseSignMode(""); err != nil || m != SignAsIs {
		t.Errorf("ParseSignMode(\"\") = %v, %v, want as_is", m, err)
	}
}

func TestReadFileSemicolonGerman(t *testing.T) {
	dir := t.TempDir()
	csv := "account;account_name;amount;posting_date;text;cost_center\n" +
		"4000;Umsatz;1.234,50;31.01.2024;Rechnung A;CC1\n" +
		"\n" +
		"4000;Umsatz;-234,50;15.01.2024;Gutschrift;CC2\n" +
		"6000;Miete;(500,00);01.01.2024;Miete Januar;\n"
	path := writeFile(t, dir, "prior.csv", []byte(csv))

	res, err := ReadFile(path, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("Rows = %d, want 3", res.Rows)
	}
	if res.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", res.Encoding)
	}

	ps := res.Ledger.Postings
	if len(ps) != 3 {
		t.Fatalf("postings = %d, want 3", len(ps))
	}
	if ps[0].Amount != 1234.5 || ps[1].Amount != -234.5 || ps[2].Amount != -500 {
		t.Errorf("amounts = %v %v %v", ps[0].Amount, ps[1].Amount, ps[2].Amount)
	}
	if ps[0].Dimension("cost_center") != "CC1" {
		t.Errorf("cost_center = %q, want CC1", ps[0].Dimension("cost_center"))
	}
	if ps[2].Dimensions != nil {
		t.Errorf("empty dimension cell should be absent, got %v", ps[2].Dimensions)
	}

	s := res.Ledger.Schema
	if !s.HasAccountName || !s.HasPostingDate || !s.HasText || s.HasDocumentNo {
		t.Errorf("schema = %+v", s)
	}
	if !s.HasDimension("cost_center") || s.HasDimension("vendor") {
		t.Errorf("dimensions = %v, want [cost_center]", s.Dimensions)
	}
}

func TestReadFileWindows1252(t *testing.T) {
	dir := t.TempDir()
	text := "account,amount,text\n4000,10,Gebühr Büro\n"
	enc, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, dir, "latin.csv", enc)

	res, err := ReadFile(path, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if res.Encoding != "windows-1252" {
		t.Errorf("Encoding = %q, want windows-1252", res.Encoding)
	}
	if got := res.Ledger.Postings[0].Text; got != "Gebühr Büro" {
		t.Errorf("Text = %q, want %q", got, "Gebühr Büro")
	}
}

func TestReadFileBOMHeader(t *testing.T) {
	dir := t.TempDir()
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("account,amount\n4000,1\n")...)
	path := writeFile(t, dir, "bom.csv", data)

	res, err := ReadFile(path, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if res.Encoding != "utf-8-sig" {
		t.Errorf("Encoding = %q, want utf-8-sig", res.Encoding)
	}
	if len(res.Ledger.Postings) != 1 {
		t.Errorf("postings = %d, want 1", len(res.Ledger.Postings))
	}
}

func TestReadFileMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.csv", []byte("account,value\n4000,1\n"))

	_, err := ReadFile(path, DefaultMapping(), Options{})
	var de *model.DataError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DataError", err)
	}
	if !errors.Is(err, model.ErrMissingColumn) || de.Field != "amount" {
		t.Errorf("err = %v, want missing amount column", err)
	}
	if de.Source != path {
		t.Errorf("Source = %q, want %q", de.Source, path)
	}
}

func TestReadFileBadAmount(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.csv", []byte("account,amount\n4000,1\n4000,n/a\n,5\n4100,2\n"))

	_, err := ReadFile(path, DefaultMapping(), Options{})
	var de *model.DataError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DataError", err)
	}
	if de.Row != 3 || !errors.Is(err, model.ErrBadAmount) {
		t.Errorf("err = %v, want bad amount on record 3", err)
	}

	res, err := ReadFile(path, DefaultMapping(), Options{Lenient: true})
	if err != nil {
		t.Fatalf("lenient ReadFile: %v", err)
	}
	if res.Dropped != 2 || len(res.Ledger.Postings) != 2 {
		t.Errorf("Dropped = %d, postings = %d, want 2 and 2", res.Dropped, len(res.Ledger.Postings))
	}
}

func TestReadFileRenamedColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "erp.csv", []byte("Konto\tBetrag\tKST\n4000\t10\tA\n"))

	m := ColumnMapping{Account: "Konto", Amount: "Betrag", Dimensions: []string{"cost_center=KST"}}
	res, err := ReadFile(path, m, Options{Sign: SignInvert})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	p := res.Ledger.Postings[0]
	if p.Account != "4000" || p.Amount != -10 || p.Dimension("cost_center") != "A" {
		t.Errorf("posting = %+v", p)
	}
}

func TestReadFileXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"account", "amount", "vendor"},
		{"4000", "100.5", "ACME"},
		{"5000", "-20", ""},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	res, err := ReadFile(path, DefaultMapping(), Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if res.Encoding != "xlsx" {
		t.Errorf("Encoding = %q, want xlsx", res.Encoding)
	}
	if len(res.Ledger.Postings) != 2 {
		t.Fatalf("postings = %d, want 2", len(res.Ledger.Postings))
	}
	if got := res.Ledger.Postings[0]; got.Amount != 100.5 || got.Dimension("vendor") != "ACME" {
		t.Errorf("posting = %+v", got)
	}
}

func TestScanPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", ".hidden.csv", "~$a.xlsx", "notes.md"} {
		writeFile(t, dir, name, []byte("x"))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.csv")}
	if len(files) != len(want) {
		t.Fatalf("ScanPath = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}

	single, err := ScanPath(want[1])
	if err != nil || len(single) != 1 {
		t.Errorf("ScanPath(file) = %v, %v", single, err)
	}

	if _, err := ScanPath(filepath.Join(dir, "missing")); err == nil {
		t.Error("ScanPath(missing) succeeded, want error")
	}
}

func TestFingerprintChangesWithMapping(t *testing.T) {
	m := DefaultMapping()
	a := Fingerprint(m, Options{})
	m.Amount = "Betrag"
	if b := Fingerprint(m, Options{}); a == b {
		t.Error("fingerprint unchanged after mapping change")
	}
	if c := Fingerprint(DefaultMapping(), Options{Sign: SignInvert}); a == c {
		t.Error("fingerprint unchanged after sign change")
	}
}
