// Package listfiles collects filter-list files when a directory instead of
// a single file is handed to sync. The walk is deterministic (sorted
// paths) and skips the tool's own directories so output and config never
// get tracked as filter lists themselves.
package listfiles

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExts are the extensions treated as filter lists.
var DefaultExts = []string{".txt"}

// Collect walks root and returns the matching files in lexicographic
// order. Hidden entries, "-diff" output directories and nano-sync config
// directories are skipped entirely.
func Collect(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExts
	}
	match := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		match[strings.ToLower(e)] = struct{}{}
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "-diff") || name == "nano-sync-config" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if _, ok := match[strings.ToLower(filepath.Ext(name))]; ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
