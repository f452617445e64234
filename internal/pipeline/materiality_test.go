package pipeline

import (
	"testing"

	"github.com/theirongolddev/varcop/internal/model"
)

func TestMaterialityOrSemantics(t *testing.T) {
	prior := ledger(post("A", 100), post("B", 10000), post("C", 50), post("D", 1000))
	current := ledger(post("A", 20100), post("B", 12000), post("C", 5050), post("D", 1050))
	cfg := model.MaterialityConfig{MinAbsDelta: 10000, MinPctDelta: 0.15, MinBase: 5000, MinShareTotal: 0.10}

	rows, err := VarianceByAccount(prior, current)
	if err != nil {
		t.Fatal(err)
	}
	material := MaterialityFilter(rows, cfg)

	want := []struct {
		account string
		rules   Rule
	}{
		{"A", RuleAbsDelta | RuleShare},
		{"C", RuleShare},
		{"B", RulePctDelta},
	}
	if len(material) != len(want) {
		t.Fatalf("material = %d rows, want %d", len(material), len(want))
	}
	for i, w := range want {
		if material[i].Account != w.account {
			t.Errorf("material[%d] = %s, want %s", i, material[i].Account, w.account)
		}
		if got := Rules(material[i], cfg); got != w.rules {
			t.Errorf("Rules(%s) = %v, want %v", w.account, got, w.rules)
		}
	}
}

func TestMaterialityZeroPriorOnlyAbsOrShare(t *testing.T) {
	row := model.AccountVariance{Account: "new", Current: 100, Delta: 100, AbsDelta: 100, ShareOfTotalAbsDelta: 0.01}
	cfg := model.MaterialityConfig{MinAbsDelta: 1000, MinPctDelta: 0, MinBase: 0, MinShareTotal: 0.5}
	if IsMaterial(row, cfg) {
		t.Error("zero-prior row qualified through the pct rule")
	}
	cfg.MinAbsDelta = 100
	if !IsMaterial(row, cfg) {
		t.Error("row at the abs threshold should be material")
	}
}

func TestMaterialityDisabledRules(t *testing.T) {
	row := model.AccountVariance{Prior: 1e9, Current: 2e9, Delta: 1e9, AbsDelta: 1e9, ShareOfTotalAbsDelta: 1}
	pct := 1.0
	row.DeltaPct = &pct

	off := model.MaterialityConfig{MinAbsDelta: model.Disabled, MinPctDelta: model.Disabled, MinBase: model.Disabled, MinShareTotal: model.Disabled}
	if IsMaterial(row, off) {
		t.Error("row material with every rule disabled")
	}
}

func TestMaterialityPreservesOrder(t *testing.T) {
	rows := []model.AccountVariance{
		{Account: "z", AbsDelta: 30000},
		{Account: "y", AbsDelta: 5},
		{Account: "a", AbsDelta: 20000},
	}
	got := MaterialityFilter(rows, model.MaterialityConfig{MinAbsDelta: 10000, MinPctDelta: model.Disabled, MinBase: model.Disabled, MinShareTotal: model.Disabled})
	if len(got) != 2 || got[0].Account != "z" || got[1].Account != "a" {
		t.Errorf("filtered = %+v, want [z a]", got)
	}
}

func TestRuleString(t *testing.T) {
	if s := (RuleAbsDelta | RuleShare).String(); s != "abs+share" {
		t.Errorf("String = %q, want abs+share", s)
	}
	if s := Rule(0).String(); s != "-" {
		t.Errorf("String = %q, want -", s)
	}
}

func TestAnalyzeKeepsWholeBookShare(t *testing.T) {
	prior := ledger(post("A", 0), post("B", 0))
	current := ledger(post("A", 90), post("B", 10))
	cfg := model.MaterialityConfig{MinAbsDelta: 50, MinPctDelta: model.Disabled, MinBase: model.Disabled, MinShareTotal: model.Disabled}

	a, err := Analyze(prior, current, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Material) != 1 || !approx(a.Material[0].ShareOfTotalAbsDelta, 0.9) {
		t.Errorf("material = %+v, want A with share 0.9", a.Material)
	}
	if a.PriorTotal != 0 || a.CurrentTotal != 100 {
		t.Errorf("totals = %v / %v, want 0 / 100", a.PriorTotal, a.CurrentTotal)
	}
	if _, ok := a.Find("B"); !ok {
		t.Error("Find(B) missing")
	}
}
