package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/varcop/internal/source"
	"github.com/theirongolddev/varcop/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache behaves like Load but reuses normalized postings from the
// cache for files whose mtime, size and mapping fingerprint are unchanged.
// Reparsed files are written back to the cache. Ledgers are merged in input
// order either way, so the result is identical to Load.
func LoadWithCache(prior, current []string, m source.ColumnMapping, opts source.Options, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := discover(prior, current)
	if err != nil {
		return nil, err
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	fingerprint := source.Fingerprint(m, opts)
	parsed := make([]*source.ReadResult, len(files))
	fromCache := make([]bool, len(files))
	infos := make([]store.FileInfo, len(files))

	// Diff: serve unchanged files from the cache, queue the rest.
	var toReparse []inputFile
	var reparseIdx []int
	for i, f := range files {
		st, err := os.Stat(f.path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.path, err)
		}
		infos[i] = store.FileInfo{
			MtimeNs:     st.ModTime().UnixNano(),
			SizeBytes:   st.Size(),
			Fingerprint: fingerprint,
		}

		if cached, ok := tracked[f.path]; ok && cached == infos[i] {
			e, err := cache.LoadFile(f.path)
			if err == nil {
				parsed[i] = &source.ReadResult{
					Path:     f.path,
					Ledger:   e.Ledger,
					Rows:     e.Rows,
					Dropped:  e.Dropped,
					Encoding: e.Encoding,
				}
				fromCache[i] = true
				result.CacheHits++
				continue
			}
		}
		toReparse = append(toReparse, f)
		reparseIdx = append(reparseIdx, i)
	}

	if progressFn != nil && result.CacheHits > 0 {
		progressFn(result.CacheHits, len(files))
	}

	if len(toReparse) > 0 {
		results, errs := parseAll(toReparse, m, opts, result.CacheHits, len(files), progressFn)
		for j, idx := range reparseIdx {
			if errs[j] != nil {
				return nil, errs[j]
			}
			parsed[idx] = results[j]
			result.Reparsed++

			// A failed cache write only costs a reparse next time.
			_ = cache.SaveFile(store.Entry{
				Path:     files[idx].path,
				Info:     infos[idx],
				Ledger:   results[j].Ledger,
				Rows:     results[j].Rows,
				Dropped:  results[j].Dropped,
				Encoding: results[j].Encoding,
			})
		}
	}

	for i, f := range files {
		result.add(f, parsed[i], fromCache[i])
	}
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "varcop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "varcop")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "postings.db")
}
