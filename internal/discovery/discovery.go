// Package discovery locates the source files to analyze.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
}

// SourceFiles expands the given paths (files or directories) into the
// sorted list of analyzable source files. Directories are walked
// recursively; dependency and build output directories are skipped, as
// are TypeScript declaration files.
func SourceFiles(paths []string, extensions []string) ([]string, error) {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("discovery: %w", err)
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if skipDirs[name] || (strings.HasPrefix(name, ".") && path != root) {
					return filepath.SkipDir
				}
				return nil
			}
			if analyzable(name, exts) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discovery: walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func analyzable(name string, exts map[string]bool) bool {
	if strings.HasSuffix(name, ".d.ts") {
		return false
	}
	return exts[strings.ToLower(filepath.Ext(name))]
}
