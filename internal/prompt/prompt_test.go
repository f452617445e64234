package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/varcop/internal/keywords"
	"github.com/theirongolddev/varcop/internal/model"
)

func strp(s string) *string { return &s }

func TestOneOffIndicators(t *testing.T) {
	samples := []model.SampleRow{
		{Amount: -600, DocumentNo: strp("DOC-1")},
		{Amount: 200},
		{Amount: 100},
		{Amount: 50},
		{Amount: 25},
		{Amount: 25}, // sixth, not in top 5
	}
	o := OneOffIndicators(samples, 1000)
	if o.Top1Share != 0.6 {
		t.Errorf("Top1Share = %v, want 0.6", o.Top1Share)
	}
	if o.Top5Share != 0.975 {
		t.Errorf("Top5Share = %v, want 0.975", o.Top5Share)
	}
	if o.Top1Doc != "DOC-1" {
		t.Errorf("Top1Doc = %q, want DOC-1", o.Top1Doc)
	}
}

func TestOneOffIndicatorsTinyDelta(t *testing.T) {
	o := OneOffIndicators([]model.SampleRow{{Amount: 5}}, 0.001)
	if o != (OneOff{}) {
		t.Errorf("OneOff = %+v, want zero", o)
	}
	if o := OneOffIndicators(nil, 100); o != (OneOff{}) {
		t.Errorf("OneOff(no samples) = %+v, want zero", o)
	}
}

func TestFormatContext(t *testing.T) {
	pct := 0.25
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	c := Context{
		Variance: model.AccountVariance{
			Account: "6300", AccountName: "Travel",
			Prior: 40000, Current: 50000, Delta: 10000, DeltaPct: &pct,
			AbsDelta: 10000, ShareOfTotalAbsDelta: 0.125,
		},
		Rules: "abs+share",
		Drivers: []model.DriverRow{
			{Dimension: "cost_center", Value: "SALES", Delta: 8000, Share: 0.8},
			{Dimension: "cost_center", Value: "HR", Delta: -2000, Share: 0.2},
		},
		Samples: []model.SampleRow{
			{PostingDate: &date, Amount: 6000, Text: strp("Trade fair flights and hotel for the whole team"), DocumentNo: strp("RE-77")},
		},
		Keywords: []keywords.Count{{Word: "hotel", Count: 4}, {Word: "flug", Count: 2}},
	}

	out, err := FormatContext(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"ACCOUNT: 6300 - Travel",
		"- Prior: 40,000",
		"- Delta: +10,000 (+25.0%)",
		"- Share of total: 12.5%",
		"- Material by: abs+share",
		"Top1 share: 60%, Top5 share: 60%, Top1 doc: RE-77",
		"DRIVERS (top 2):\n  SALES: Δ +8,000 (80%)\n  HR: Δ -2,000 (20%)\n",
		"2024-05-02: +6,000 | Trade fair flights and hotel for t…",
		"KEYWORDS: hotel(4), flug(2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q\n%s", want, out)
		}
	}
}

func TestFormatContextEmpty(t *testing.T) {
	out, err := FormatContext(Context{Variance: model.AccountVariance{Account: "1"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ACCOUNT: 1\n", "(n/a)", "no drivers", "no postings", "KEYWORDS: none"} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Material by") {
		t.Error("empty rules rendered")
	}
}

func TestSystemPrompt(t *testing.T) {
	s, err := SystemPrompt("")
	if err != nil || !strings.Contains(s, "STRICT") {
		t.Errorf("SystemPrompt(\"\") = %q, %v", s, err)
	}
	if _, err := SystemPrompt("loose"); err == nil {
		t.Error("unknown mode accepted")
	}
}
