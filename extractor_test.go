package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under root; keys are slash-separated relative
// paths. A key ending in "/" creates an empty directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestConsole() (*console, *bytes.Buffer) {
	var buf bytes.Buffer
	return newConsole(&buf, &buf), &buf
}

// fenced extracts the content between the fence markers of one record.
func fenced(t *testing.T, block string) string {
	t.Helper()
	_, after, ok := strings.Cut(block, "CODE:\n```\n")
	require.True(t, ok, "missing opening fence in %q", block)
	require.True(t, strings.HasSuffix(after, "\n```"), "missing closing fence in %q", block)
	return strings.TrimSuffix(after, "\n```")
}

func TestRun_WritesRecordsInTopDownOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b/d/e.txt": "e",
		"b/c.txt":   "c",
		"z.txt":     "z",
		"a.txt":     "a",
	})
	out := filepath.Join(t.TempDir(), "summary.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.True(t, summary.Written)

	var paths []string
	for i, r := range summary.Records {
		assert.Equal(t, i+1, r.Index)
		paths = append(paths, r.RelativePath)
	}
	assert.Equal(t, []string{"a.txt", "z.txt", "b/c.txt", "b/d/e.txt"}, paths)

	want := "File 1: path= a.txt\n\nCODE:\n```\na\n```" + recordSeparator +
		"File 2: path= z.txt\n\nCODE:\n```\nz\n```" + recordSeparator +
		"File 3: path= b/c.txt\n\nCODE:\n```\nc\n```" + recordSeparator +
		"File 4: path= b/d/e.txt\n\nCODE:\n```\ne\n```"
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
	assert.Equal(t, want, summary.Text)
}

func TestRun_SeparatesRecordsWithTenBlankLines(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"one.go":        "package one\n",
		"two/two.go":    "package two\n",
		"two/three.md":  "# three\n",
		"four/five.txt": "five",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	_, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	blocks := strings.Split(string(got), strings.Repeat("\n", 11))
	require.Len(t, blocks, 4)
	for i, block := range blocks {
		assert.True(t, strings.HasPrefix(block, "File "+string(rune('1'+i))+": path= "), block)
		assert.False(t, strings.HasPrefix(block, "\n"), "block %d starts with extra newline", i+1)
	}
}

func TestRun_ContentRoundTrips(t *testing.T) {
	files := map[string]string{
		"main.go":        "package main\n\nfunc main() {}\n",
		"empty.txt":      "",
		"unicode/ü.txt":  "héllo wörld ✓\n",
		"no-newline.txt": "last line",
	}
	root := t.TempDir()
	writeTree(t, root, files)
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, len(files))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	for i, block := range strings.Split(string(got), recordSeparator) {
		rel := summary.Records[i].RelativePath
		assert.Equal(t, files[rel], fenced(t, block), rel)
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/b/c.txt": "c",
		"a/d.txt":   "d",
		"e.txt":     "e",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	_, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_NoFilesLeavesOutputUntouched(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"empty/":        "",
		"nested/inner/": "",
	})

	t.Run("missing output is not created", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.txt")
		con, buf := newTestConsole()

		summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
		require.NoError(t, err)
		assert.False(t, summary.Written)
		assert.Empty(t, summary.Records)
		assert.Contains(t, buf.String(), "No files found in the specified directory.")
		assert.NoFileExists(t, out)
	})

	t.Run("existing output is kept", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.txt")
		require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))
		con, _ := newTestConsole()

		_, err := NewExtractor(con, walkOptions{}).Run(root, out)
		require.NoError(t, err)
		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "previous", string(got))
	})
}

func TestRun_InvalidRoot(t *testing.T) {
	dir := t.TempDir()
	regular := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(regular, []byte("x"), 0644))

	tests := []struct {
		name string
		root string
	}{
		{name: "nonexistent", root: filepath.Join(dir, "missing")},
		{name: "regular file", root: regular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.txt")
			con, buf := newTestConsole()

			summary, err := NewExtractor(con, walkOptions{}).Run(tt.root, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRoot))
			assert.Nil(t, summary)
			assert.Contains(t, buf.String(), "is not a valid directory")
			assert.NoFileExists(t, out)
		})
	}
}

func TestRun_UnreadableFileGetsPlaceholder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":      "a",
		"locked.txt": "secret",
		"z.txt":      "z",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	con, buf := newTestConsole()
	e := NewExtractor(con, walkOptions{})
	e.readFile = func(name string) ([]byte, error) {
		if filepath.Base(name) == "locked.txt" {
			return nil, errors.New("permission denied")
		}
		return os.ReadFile(name)
	}

	summary, err := e.Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 3)

	assert.Equal(t, "a", summary.Records[0].Content)
	assert.Equal(t, "[Error reading file: permission denied]", summary.Records[1].Content)
	assert.Equal(t, "z", summary.Records[2].Content)
	assert.Contains(t, buf.String(), "Error reading file: locked.txt - permission denied")
}

func TestRun_PanicDuringReadGetsPlaceholder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "a",
		"b.txt": "b",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	e := NewExtractor(con, walkOptions{})
	e.readFile = func(name string) ([]byte, error) {
		if filepath.Base(name) == "a.txt" {
			panic("boom")
		}
		return os.ReadFile(name)
	}

	summary, err := e.Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "[Unexpected error reading file: boom]", summary.Records[0].Content)
	assert.Equal(t, "b", summary.Records[1].Content)
}

func TestRun_BrokenSymlinkGetsPlaceholder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "a.txt", summary.Records[0].RelativePath)
	assert.Equal(t, "dangling", summary.Records[1].RelativePath)
	assert.True(t, strings.HasPrefix(summary.Records[1].Content, "[Error reading file: "))
}

func TestRun_DoesNotFollowDirectorySymlinks(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	writeTree(t, other, map[string]string{"outside.txt": "outside"})
	if err := os.Symlink(other, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, "a.txt", summary.Records[0].RelativePath)
}

func TestRun_DecodesLossily(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.dat"), []byte("ab\xff\xfec\r\nd"), 0644))
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, "abc\nd", summary.Records[0].Content)
}

func TestRun_ExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":               "package main",
		".git/HEAD":             "ref: refs/heads/main",
		"node_modules/x/y.js":   "y",
		"src/node_modules/z.js": "z",
		"src/app.go":            "package src",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{ExcludeDirs: []string{".git", " node_modules "}}).Run(root, out)
	require.NoError(t, err)

	var paths []string
	for _, r := range summary.Records {
		paths = append(paths, r.RelativePath)
	}
	assert.Equal(t, []string{"main.go", "src/app.go"}, paths)
}

func TestRun_HiddenEntriesAreKeptByDefault(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".env":      "KEY=1",
		".git/HEAD": "ref",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, ".env", summary.Records[0].RelativePath)
	assert.Equal(t, ".git/HEAD", summary.Records[1].RelativePath)
}

func TestRun_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":    "*.log\nbuild/\n",
		"app.go":        "package app",
		"debug.log":     "noise",
		"build/out.bin": "bin",
		"docs/guide.md": "# guide",
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	t.Run("enabled", func(t *testing.T) {
		con, _ := newTestConsole()
		summary, err := NewExtractor(con, walkOptions{UseGitignore: true}).Run(root, out)
		require.NoError(t, err)

		var paths []string
		for _, r := range summary.Records {
			paths = append(paths, r.RelativePath)
		}
		assert.Equal(t, []string{".gitignore", "app.go", "docs/guide.md"}, paths)
	})

	t.Run("disabled by default", func(t *testing.T) {
		con, _ := newTestConsole()
		summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
		require.NoError(t, err)
		assert.Len(t, summary.Records, 5)
	})
}

func TestRun_RecordsOutputInsideRootByDefault(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":     "a",
		"notes.txt": "my notes",
	})
	out := filepath.Join(root, "notes.txt")

	con, _ := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.NoError(t, err)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, "notes.txt", summary.Records[1].RelativePath)
	assert.Equal(t, "my notes", summary.Records[1].Content)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, summary.Text, string(got))
}

func TestRun_SkipOutputLeavesOutputFileOut(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "a",
		"b.txt": "b",
	})
	out := filepath.Join(root, "code_summary.txt")
	opts := walkOptions{SkipOutput: true}

	con, _ := newTestConsole()
	_, err := NewExtractor(con, opts).Run(root, out)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	summary, err := NewExtractor(con, opts).Run(root, out)
	require.NoError(t, err)
	assert.Len(t, summary.Records, 2)

	second, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_WriteFailureIsReported(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	out := filepath.Join(t.TempDir(), "missing-dir", "out.txt")

	con, buf := newTestConsole()
	summary, err := NewExtractor(con, walkOptions{}).Run(root, out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidRoot))
	require.NotNil(t, summary)
	assert.False(t, summary.Written)
	assert.Len(t, summary.Records, 1)
	assert.Contains(t, buf.String(), "Could not write to output file")
}

func TestRelativePath(t *testing.T) {
	root := t.TempDir()

	rel, err := relativePath(root, filepath.Join(root, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a/b.txt", rel)

	full := filepath.Join(root, "x.txt")
	rel, err = relativePath("relative-root", full)
	require.Error(t, err)
	assert.Equal(t, full, rel)
	assert.Contains(t, err.Error(), "could not determine relative path for "+full)
}
