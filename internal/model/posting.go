// Package model defines domain types for ledger postings and variance results.
package model

import (
	"slices"
	"time"
)

// Posting is one transaction-level ledger entry after normalization.
// Amounts are already sign-normalized by the reader.
type Posting struct {
	Account     string
	AccountName string // empty when the export has no label for this row
	Amount      float64
	PostingDate time.Time
	Text        string
	DocumentNo  string

	// Dimensions holds optional categorical fields (cost_center, vendor, ...).
	// A missing key and an empty value both mean "absent".
	Dimensions map[string]string
}

// Dimension returns the posting's value for a dimension, or "" if absent.
func (p Posting) Dimension(name string) string {
	if p.Dimensions == nil {
		return ""
	}
	return p.Dimensions[name]
}

// Schema describes which optional columns a ledger carries.
type Schema struct {
	HasAccountName bool     `json:"has_account_name" yaml:"has_account_name"`
	HasPostingDate bool     `json:"has_posting_date" yaml:"has_posting_date"`
	HasText        bool     `json:"has_text" yaml:"has_text"`
	HasDocumentNo  bool     `json:"has_document_no" yaml:"has_document_no"`
	Dimensions     []string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// HasDimension reports whether the schema carries the named dimension column.
func (s Schema) HasDimension(name string) bool {
	return slices.Contains(s.Dimensions, name)
}

// Merge returns the union of two schemas. Dimension order is s first, then
// any new names from o.
func (s Schema) Merge(o Schema) Schema {
	out := Schema{
		HasAccountName: s.HasAccountName || o.HasAccountName,
		HasPostingDate: s.HasPostingDate || o.HasPostingDate,
		HasText:        s.HasText || o.HasText,
		HasDocumentNo:  s.HasDocumentNo || o.HasDocumentNo,
		Dimensions:     slices.Clone(s.Dimensions),
	}
	for _, d := range o.Dimensions {
		if !out.HasDimension(d) {
			out.Dimensions = append(out.Dimensions, d)
		}
	}
	return out
}

// Ledger is the posting set for one period.
type Ledger struct {
	Schema   Schema
	Postings []Posting
}

// Append merges another ledger's postings and schema into l.
func (l *Ledger) Append(o Ledger) {
	l.Schema = l.Schema.Merge(o.Schema)
	l.Postings = append(l.Postings, o.Postings...)
}
