package source

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// SignMode selects how raw export amounts are turned into signed amounts.
type SignMode string

const (
	SignAsIs   SignMode = "as_is"
	SignInvert SignMode = "invert"
	SignAbs    SignMode = "abs"
)

// ParseSignMode validates a sign mode name. Empty means SignAsIs.
func ParseSignMode(s string) (SignMode, error) {
	switch SignMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SignAsIs:
		return SignAsIs, nil
	case SignInvert:
		return SignInvert, nil
	case SignAbs:
		return SignAbs, nil
	}
	return "", fmt.Errorf("unknown sign mode %q (want as_is, invert or abs)", s)
}

// Apply converts a raw amount according to the mode.
func (m SignMode) Apply(v float64) float64 {
	switch m {
	case SignInvert:
		return -v
	case SignAbs:
		return math.Abs(v)
	default:
		return v
	}
}

// ColumnMapping maps export column headers to posting fields.
// Account and Amount are required; the rest are used when the header has them.
type ColumnMapping struct {
	PostingDate string `toml:"posting_date"`
	Amount      string `toml:"amount"`
	Account     string `toml:"account"`
	AccountName string `toml:"account_name"`
	Text        string `toml:"text"`
	DocumentNo  string `toml:"document_no"`

	// Dimensions lists dimension columns, either "name" or "name=Header".
	Dimensions []string `toml:"dimensions"`
}

// DefaultMapping returns the mapping for exports that already use the
// standard column names.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		PostingDate: "posting_date",
		Amount:      "amount",
		Account:     "account",
		AccountName: "account_name",
		Text:        "text",
		DocumentNo:  "document_no",
		Dimensions:  []string{"cost_center", "vendor"},
	}
}

// dimensionSpec is a parsed Dimensions entry.
type dimensionSpec struct {
	name   string
	header string
}

func (m ColumnMapping) dimensionSpecs() []dimensionSpec {
	specs := make([]dimensionSpec, 0, len(m.Dimensions))
	for _, d := range m.Dimensions {
		name, header, ok := strings.Cut(d, "=")
		name = strings.TrimSpace(name)
		header = strings.TrimSpace(header)
		if !ok {
			header = name
		}
		if name == "" || header == "" {
			continue
		}
		specs = append(specs, dimensionSpec{name: name, header: header})
	}
	return specs
}

// Options controls normalization.
type Options struct {
	Sign SignMode

	// Decimal is the decimal separator style. DecimalAuto (or empty)
	// decides once per file.
	Decimal Decimal

	// Lenient drops rows with an empty account or an unparseable amount or
	// date instead of failing the whole file.
	Lenient bool
}

// Fingerprint identifies a mapping plus options, so cached parses made with
// different settings are not reused.
func Fingerprint(m ColumnMapping, opts Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s|%s|%s|%t",
		m.PostingDate, m.Amount, m.Account, m.AccountName, m.Text, m.DocumentNo,
		strings.Join(m.Dimensions, ","), opts.Sign, opts.Decimal, opts.Lenient)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
