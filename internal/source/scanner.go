package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var supportedExt = map[string]bool{
	".csv":  true,
	".txt":  true,
	".tsv":  true,
	".xlsx": true,
	".xlsm": true,
}

// ScanPath expands a period argument into export files. A file is returned
// as is; a directory yields every supported file directly inside it, sorted
// by name. Hidden files and Office lock files (~$...) are skipped.
func ScanPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !supportedExt[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}

// ScanPaths expands several period arguments and concatenates the results.
func ScanPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		found, err := ScanPath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
