// Package keywords extracts frequent words from posting texts.
package keywords

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/theirongolddev/varcop/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTop is the number of keywords returned when n <= 0.
const DefaultTop = 10

// Count is a keyword and how often it occurs.
type Count struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		der die das den dem des ein eine einer und oder aber wenn weil dass als
		auch noch schon von vom zum zur mit bei nach vor fuer für durch ist sind
		war hat haben wird werden kann muss
		the a an and or but if of to in on at for with by from is are was were
		be been have has had do does did will would can could`) {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w is ignored by Top.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || r == 'ä' || r == 'ö' || r == 'ü' || r == 'ß'
}

// Tokenize lowercases text and splits it into words of Latin letters and
// umlauts. Digits and punctuation separate words; words of two runes or
// fewer are dropped.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// Casers hold state, so each call gets its own.
	lower := cases.Lower(language.German)
	words := strings.FieldsFunc(lower.String(text), func(r rune) bool {
		return !isWordRune(r)
	})

	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// Top counts the words of texts, stopwords excluded, and returns the n most
// frequent (DefaultTop when n <= 0). Ties are ordered alphabetically.
func Top(texts []string, n int) []Count {
	if n <= 0 {
		n = DefaultTop
	}

	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range Tokenize(t) {
			if IsStopword(w) {
				continue
			}
			counts[w]++
		}
	}

	out := make([]Count, 0, len(counts))
	for w, c := range counts {
		out = append(out, Count{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ForAccount returns the top keywords of one account's posting texts.
// A ledger without a text column yields an empty result.
func ForAccount(l model.Ledger, account string, n int) []Count {
	if !l.Schema.HasText {
		return []Count{}
	}
	var texts []string
	for _, p := range l.Postings {
		if p.Account == account && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return Top(texts, n)
}

// ForAccountBoth merges keywords from both periods, so terms that only
// appear in the current period still show up.
func ForAccountBoth(prior, current model.Ledger, account string, n int) []Count {
	var texts []string
	for _, l := range []model.Ledger{prior, current} {
		if !l.Schema.HasText {
			continue
		}
		for _, p := range l.Postings {
			if p.Account == account && p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
	}
	if len(texts) == 0 {
		return []Count{}
	}
	return Top(texts, n)
}
