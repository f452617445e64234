package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestMaterialityConfigJSON(t *testing.T) {
	cfg := DefaultMateriality()
	cfg.MinBase = Disabled

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"min_base":null`) {
		t.Errorf("json = %s, want min_base null", data)
	}

	var back MaterialityConfig
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.MinAbsDelta != DefaultMinAbsDelta || !math.IsInf(back.MinBase, 1) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestSchemaMerge(t *testing.T) {
	a := Schema{HasText: true, Dimensions: []string{"cost_center"}}
	b := Schema{HasDocumentNo: true, Dimensions: []string{"vendor", "cost_center"}}

	m := a.Merge(b)
	if !m.HasText || !m.HasDocumentNo || m.HasPostingDate {
		t.Errorf("flags = %+v", m)
	}
	if strings.Join(m.Dimensions, ",") != "cost_center,vendor" {
		t.Errorf("dimensions = %v, want [cost_center vendor]", m.Dimensions)
	}
	if len(a.Dimensions) != 1 {
		t.Error("Merge modified its receiver")
	}
}

func TestLedgerAppend(t *testing.T) {
	var l Ledger
	l.Append(Ledger{Schema: Schema{HasText: true}, Postings: []Posting{{Account: "1"}}})
	l.Append(Ledger{Postings: []Posting{{Account: "2"}}})
	if len(l.Postings) != 2 || !l.Schema.HasText {
		t.Errorf("ledger = %+v", l)
	}
}

func TestDataError(t *testing.T) {
	err := error(&DataError{Op: "read", Source: "a.csv", Row: 4, Field: "amount", Value: "x", Err: ErrBadAmount})
	if got := err.Error(); got != `read a.csv row 4 field "amount" value "x": amount is not a number` {
		t.Errorf("Error() = %q", got)
	}
	wrapped := errors.Join(errors.New("loading"), err)
	if !IsDataError(wrapped) || !errors.Is(wrapped, ErrBadAmount) {
		t.Error("wrapped DataError not detected")
	}
	if IsDataError(errors.New("other")) {
		t.Error("plain error reported as DataError")
	}
}

func TestPostingDimension(t *testing.T) {
	var p Posting
	if p.Dimension("cost_center") != "" {
		t.Error("nil dimensions returned a value")
	}
	p.Dimensions = map[string]string{"cost_center": "A"}
	if p.Dimension("cost_center") != "A" {
		t.Error("dimension lookup failed")
	}
}
