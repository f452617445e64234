package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/source"
)

// Period identifies which side of the comparison a file belongs to.
type Period int

const (
	PeriodPrior Period = iota
	PeriodCurrent
)

func (p Period) String() string {
	if p == PeriodPrior {
		return "prior"
	}
	return "current"
}

// FileStat describes one input file after loading.
type FileStat struct {
	Path     string
	Period   Period
	Rows     int
	Postings int
	Dropped  int
	Encoding string
	Cached   bool
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Prior       model.Ledger
	Current     model.Ledger
	Files       []FileStat
	TotalFiles  int
	ParsedFiles int
	Dropped     int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// inputFile is one file to load, tagged with its period.
type inputFile struct {
	path   string
	period Period
}

// discover expands the prior and current arguments into files. Either
// side may be empty.
func discover(prior, current []string) ([]inputFile, error) {
	var files []inputFile
	for _, side := range []struct {
		paths  []string
		period Period
	}{{prior, PeriodPrior}, {current, PeriodCurrent}} {
		found, err := source.ScanPaths(side.paths)
		if err != nil {
			return nil, fmt.Errorf("scanning %s inputs: %w", side.period, err)
		}
		for _, f := range found {
			if abs, err := filepath.Abs(f); err == nil {
				f = abs
			}
			files = append(files, inputFile{path: f, period: side.period})
		}
	}
	return files, nil
}

// Load discovers and parses every export file of both periods.
// It uses a bounded worker pool for parallel parsing; the first failing
// file (in input order) aborts the load.
func Load(prior, current []string, m source.ColumnMapping, opts source.Options, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := discover(prior, current)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results, errs := parseAll(files, m, opts, 0, len(files), progressFn)
	for i, f := range files {
		if errs[i] != nil {
			return nil, errs[i]
		}
		result.add(f, results[i], false)
	}
	return result, nil
}

// parseAll parses files with a worker pool sized to GOMAXPROCS. Results are
// indexed like files. offset is added to the progress count so cached files
// can be reported first.
func parseAll(files []inputFile, m source.ColumnMapping, opts source.Options, offset, total int, progressFn ProgressFunc) ([]*source.ReadResult, []error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]*source.ReadResult, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx], errs[idx] = source.ReadFile(files[idx].path, m, opts)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results, errs
}

// add merges one parsed file into its period's ledger.
func (r *LoadResult) add(f inputFile, res *source.ReadResult, cached bool) {
	switch f.period {
	case PeriodPrior:
		r.Prior.Append(res.Ledger)
	default:
		r.Current.Append(res.Ledger)
	}
	r.ParsedFiles++
	r.Dropped += res.Dropped
	r.Files = append(r.Files, FileStat{
		Path:     f.path,
		Period:   f.period,
		Rows:     res.Rows,
		Postings: len(res.Ledger.Postings),
		Dropped:  res.Dropped,
		Encoding: res.Encoding,
		Cached:   cached,
	})
}
