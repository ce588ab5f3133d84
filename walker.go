package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
)

// walkOptions controls which entries the walker prunes. The zero value
// visits every file.
type walkOptions struct {
	ExcludeDirs  []string // directory base names pruned during traversal
	UseGitignore bool     // honor <root>/.gitignore when present
	SkipOutput   bool     // leave the output file out when it lies under the root
	SkipPath     string   // absolute path never reported as a file
}

type walker struct {
	root     string
	excluded map[string]bool
	ignore   gitignore.IgnoreMatcher
	skip     string
	con      *console
	visit    func(path string)
}

// walkFiles visits every file under root, top-down: the files of a
// directory are reported before any of its subdirectories is entered, and
// entries within one directory are taken in lexical order. Symlinks to
// directories are neither followed nor reported. Directories that cannot be
// listed are reported as warnings and skipped.
func walkFiles(root string, opts walkOptions, con *console, visit func(path string)) {
	w := &walker{
		root:     root,
		excluded: make(map[string]bool, len(opts.ExcludeDirs)),
		skip:     opts.SkipPath,
		con:      con,
		visit:    visit,
	}
	for _, name := range opts.ExcludeDirs {
		if name = strings.TrimSpace(name); name != "" {
			w.excluded[name] = true
		}
	}
	if opts.UseGitignore {
		w.ignore = loadGitignore(root, con)
	}
	w.walkDir(root)
}

// loadGitignore parses the .gitignore at the root of the walk, if any.
func loadGitignore(root string, con *console) gitignore.IgnoreMatcher {
	// Nested .gitignore files are not consulted.
	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		return nil
	}
	matcher, err := gitignore.NewGitIgnore(gitIgnorePath, root)
	if err != nil {
		con.Warnf("could not parse .gitignore file %s: %v", gitIgnorePath, err)
		return nil
	}
	return matcher
}

func (w *walker) walkDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.con.Warnf("error accessing directory %s: %v", dir, err)
		// ReadDir may still return the entries read before the failure.
		if len(entries) == 0 {
			return
		}
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir, isLink := classify(path, entry)
		if isDir {
			if isLink || w.excluded[entry.Name()] || w.ignored(path, true) {
				continue
			}
			subdirs = append(subdirs, path)
			continue
		}

		if w.ignored(path, false) || w.isSkipped(path) {
			continue
		}
		w.visit(path)
	}

	for _, sub := range subdirs {
		w.walkDir(sub)
	}
}

// classify reports whether the entry resolves to a directory, and whether
// it got there through a symlink.
func classify(path string, entry fs.DirEntry) (isDir, isLink bool) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), false
	}
	info, err := os.Stat(path)
	if err != nil {
		// Broken link: treated as a file so the read error surfaces.
		return false, true
	}
	return info.IsDir(), true
}

func (w *walker) ignored(path string, isDir bool) bool {
	return w.ignore != nil && w.ignore.Match(path, isDir)
}

func (w *walker) isSkipped(path string) bool {
	if w.skip == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == w.skip
}

// relativePath returns path relative to root using forward slashes. When no
// relative form exists the full path is returned together with the error.
func relativePath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path, fmt.Errorf("could not determine relative path for %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}
