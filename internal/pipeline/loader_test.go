package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/source"
	"github.com/theirongolddev/varcop/internal/store"
)

func writeExport(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func fixture(t *testing.T) (prior, current string) {
	t.Helper()
	root := t.TempDir()
	priorDir := filepath.Join(root, "prior")
	if err := os.Mkdir(priorDir, 0o700); err != nil {
		t.Fatal(err)
	}
	writeExport(t, priorDir, "jan.csv", "account,amount,cost_center\n4000,100,A\n5000,20,B\n")
	writeExport(t, priorDir, "feb.csv", "account,amount,vendor\n4000,50,ACME\n")
	current = writeExport(t, root, "current.csv", "account;amount;cost_center\n4000;400;A\n6000;7;C\n")
	return priorDir, current
}

func TestLoadMergesPeriods(t *testing.T) {
	prior, current := fixture(t)

	var calls atomic.Int32
	res, err := Load([]string{prior}, []string{current}, source.DefaultMapping(), source.Options{}, func(n, total int) {
		calls.Add(1)
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("progress calls = %d, want 3", n)
	}
	if res.TotalFiles != 3 || res.ParsedFiles != 3 {
		t.Errorf("files = %d/%d, want 3/3", res.ParsedFiles, res.TotalFiles)
	}
	if len(res.Prior.Postings) != 3 || len(res.Current.Postings) != 2 {
		t.Errorf("postings = %d/%d, want 3/2", len(res.Prior.Postings), len(res.Current.Postings))
	}
	// feb.csv sorts before jan.csv
	if res.Prior.Postings[0].Amount != 50 {
		t.Errorf("first prior posting = %+v, want feb row", res.Prior.Postings[0])
	}
	s := res.Prior.Schema
	if !s.HasDimension("cost_center") || !s.HasDimension("vendor") {
		t.Errorf("prior dimensions = %v, want union", s.Dimensions)
	}

	rows, err := VarianceByAccount(res.Prior, res.Current)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Account != "4000" || rows[0].Delta != 250 {
		t.Errorf("top row = %+v, want 4000 +250", rows[0])
	}
}

func TestLoadFailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeExport(t, dir, "bad.csv", "account,amount\n4000,oops\n")

	_, err := Load([]string{bad}, nil, source.DefaultMapping(), source.Options{}, nil)
	if !model.IsDataError(err) {
		t.Fatalf("err = %v, want DataError", err)
	}

	res, err := Load([]string{bad}, nil, source.DefaultMapping(), source.Options{Lenient: true}, nil)
	if err != nil {
		t.Fatalf("lenient Load: %v", err)
	}
	if res.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Dropped)
	}
}

func TestLoadEmpty(t *testing.T) {
	res, err := Load(nil, nil, source.DefaultMapping(), source.Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", res.TotalFiles)
	}
}

func TestLoadWithCache(t *testing.T) {
	prior, current := fixture(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "postings.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	m := source.DefaultMapping()
	first, err := LoadWithCache([]string{prior}, []string{current}, m, source.Options{}, cache, nil)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.CacheHits != 0 || first.Reparsed != 3 {
		t.Errorf("first load hits/reparsed = %d/%d, want 0/3", first.CacheHits, first.Reparsed)
	}

	second, err := LoadWithCache([]string{prior}, []string{current}, m, source.Options{}, cache, nil)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.CacheHits != 3 || second.Reparsed != 0 {
		t.Errorf("second load hits/reparsed = %d/%d, want 3/0", second.CacheHits, second.Reparsed)
	}

	plain, err := Load([]string{prior}, []string{current}, m, source.Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Prior.Postings) != len(plain.Prior.Postings) {
		t.Fatalf("cached prior postings = %d, want %d", len(second.Prior.Postings), len(plain.Prior.Postings))
	}
	for i := range plain.Prior.Postings {
		a, b := second.Prior.Postings[i], plain.Prior.Postings[i]
		if a.Account != b.Account || a.Amount != b.Amount || a.Dimension("cost_center") != b.Dimension("cost_center") {
			t.Errorf("posting %d = %+v, want %+v", i, a, b)
		}
	}

	// A different sign mode must not reuse the cached parse.
	third, err := LoadWithCache([]string{prior}, []string{current}, m, source.Options{Sign: source.SignInvert}, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHits != 0 {
		t.Errorf("hits after option change = %d, want 0", third.CacheHits)
	}
	if third.Current.Postings[0].Amount != -400 {
		t.Errorf("inverted amount = %v, want -400", third.Current.Postings[0].Amount)
	}
}
