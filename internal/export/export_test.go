package export

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func testReport(t *testing.T) *Report {
	t.Helper()
	schema := model.Schema{HasText: true, HasDocumentNo: true, Dimensions: []string{"cost_center"}}
	prior := model.Ledger{Schema: schema, Postings: []model.Posting{
		{Account: "4000", AccountName: "Revenue", Amount: 100000, Text: "Sales", Dimensions: map[string]string{"cost_center": "A"}},
		{Account: "6000", AccountName: "Rent", Amount: 20000, Text: "Rent", Dimensions: map[string]string{"cost_center": "B"}},
	}}
	current := model.Ledger{Schema: schema, Postings: []model.Posting{
		{Account: "4000", AccountName: "Revenue", Amount: 130000, Text: "Sales campaign", DocumentNo: "D1", Dimensions: map[string]string{"cost_center": "A"}},
		{Account: "6000", AccountName: "Rent", Amount: 20100, Text: "Rent", Dimensions: map[string]string{"cost_center": "B"}},
		{Account: "7000", Amount: 50},
	}}

	cfg := model.DefaultMateriality()
	cfg.MinShareTotal = math.Inf(1)
	a, err := pipeline.Analyze(prior, current, cfg)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Build(a, prior, current, Options{
		PriorLabel: "Q1 2023", CurrentLabel: "Q1 2024", Dimension: "cost_center",
		TopDrivers: 5, TopSamples: 8, TopKeywords: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestBuild(t *testing.T) {
	r := testReport(t)

	if _, err := uuid.Parse(r.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", r.ID, err)
	}
	if len(r.Variances) != 3 {
		t.Errorf("variances = %d, want 3", len(r.Variances))
	}
	if len(r.Material) != 1 || r.Material[0].Account != "4000" {
		t.Fatalf("material = %+v, want [4000]", r.Material)
	}
	d := r.Details[0]
	if d.Rules != "abs+pct" {
		t.Errorf("rules = %q, want abs+pct", d.Rules)
	}
	if len(d.Drivers) != 1 || d.Drivers[0].Value != "A" || d.Drivers[0].Delta != 30000 {
		t.Errorf("drivers = %+v", d.Drivers)
	}
	if len(d.Samples) != 1 || d.OneOff.Top1Doc != "D1" {
		t.Errorf("samples = %+v, one-off = %+v", d.Samples, d.OneOff)
	}
	if len(d.Keywords) == 0 || d.Keywords[0].Word != "sales" {
		t.Errorf("keywords = %+v, want sales first", d.Keywords)
	}
	if len(r.DimensionSummary) != 2 {
		t.Errorf("dimension summary = %+v", r.DimensionSummary)
	}
}

func TestWriteJSON(t *testing.T) {
	r := testReport(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatal(err)
	}

	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	m := back["materiality"].(map[string]any)
	if m["min_share_total"] != nil {
		t.Errorf("disabled threshold = %v, want null", m["min_share_total"])
	}
	if !strings.Contains(buf.String(), `"share_of_total_abs_delta"`) {
		t.Error("variance field names missing")
	}
}

func TestWriteYAML(t *testing.T) {
	r := testReport(t)
	var buf bytes.Buffer
	if err := WriteYAML(&buf, r); err != nil {
		t.Fatal(err)
	}

	var back struct {
		ID          string                  `yaml:"id"`
		Materiality model.MaterialityConfig `yaml:"materiality"`
		Material    []model.AccountVariance `yaml:"material"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != r.ID || len(back.Material) != 1 {
		t.Errorf("decoded = %+v", back)
	}
	if !math.IsInf(back.Materiality.MinShareTotal, 1) {
		t.Errorf("min_share_total = %v, want +Inf", back.Materiality.MinShareTotal)
	}
}

func TestWriteXLSX(t *testing.T) {
	r := testReport(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteFile(path, r, FormatXLSX); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	want := []string{"Summary", "Variances", "Material", "Drivers", "By cost_center"}
	got := f.GetSheetList()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sheets = %v, want %v", got, want)
	}

	rows, err := f.GetRows("Material")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "4000" || rows[1][8] != "abs+pct" {
		t.Errorf("material rows = %v", rows)
	}

	id, _ := f.GetCellValue("Summary", "B2")
	if id != r.ID {
		t.Errorf("Summary B2 = %q, want %q", id, r.ID)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YML": FormatYAML, "xlsx": FormatXLSX} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("ParseFormat(csv) succeeded")
	}
	if f, ok := FormatForPath("out/report.yaml"); !ok || f != FormatYAML {
		t.Errorf("FormatForPath = %v, %v", f, ok)
	}
}
