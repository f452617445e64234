package pipeline

import (
	"sort"

	"github.com/theirongolddev/varcop/internal/model"
)

// SamplesForAccount returns the account's largest postings by |amount|,
// unaggregated, cut to topN (DefaultTopSamples when topN <= 0). Only columns
// the ledger's schema carries are projected.
func SamplesForAccount(l model.Ledger, account string, topN int) []model.SampleRow {
	if topN <= 0 {
		topN = DefaultTopSamples
	}

	postings := filterAccount(l.Postings, account)
	sort.SliceStable(postings, func(i, j int) bool {
		return absf(postings[i].Amount) > absf(postings[j].Amount)
	})
	if len(postings) > topN {
		postings = postings[:topN]
	}

	rows := make([]model.SampleRow, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, project(p, l.Schema))
	}
	return rows
}

func project(p model.Posting, s model.Schema) model.SampleRow {
	row := model.SampleRow{Amount: p.Amount}
	if s.HasPostingDate && !p.PostingDate.IsZero() {
		d := p.PostingDate
		row.PostingDate = &d
	}
	if s.HasDocumentNo {
		doc := p.DocumentNo
		row.DocumentNo = &doc
	}
	if s.HasText {
		text := p.Text
		row.Text = &text
	}
	if len(s.Dimensions) > 0 {
		row.Dimensions = make(map[string]string, len(s.Dimensions))
		for _, d := range s.Dimensions {
			row.Dimensions[d] = p.Dimension(d)
		}
	}
	return row
}
