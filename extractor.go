package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrInvalidRoot is returned when the directory to scan does not exist or
// is not a directory. It is the only error that fails a run.
var ErrInvalidRoot = errors.New("invalid root directory")

var errNotRegular = errors.New("not a regular file")

// Extractor walks a directory tree and writes every file's text into one
// summary file.
type Extractor struct {
	opts     walkOptions
	con      *console
	readFile func(name string) ([]byte, error)
}

// NewExtractor returns an Extractor that reports progress on con.
func NewExtractor(con *console, opts walkOptions) *Extractor {
	return &Extractor{
		opts:     opts,
		con:      con,
		readFile: os.ReadFile,
	}
}

// Run scans root and writes the summary to output, overwriting it.
//
// A missing or non-directory root yields an error wrapping ErrInvalidRoot
// and nothing is written. Per-file problems never abort the run: they are
// reported and folded into the record as placeholder content. When no file
// is found the output is left untouched and Summary.Written is false. A
// failed write is reported and returned; the summary is still returned.
func (e *Extractor) Run(root, output string) (*Summary, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		e.con.Errorf("The provided path '%s' is not a valid directory.", root)
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	e.con.Infof("Starting search in: %s", root)
	e.con.Infof("Output will be saved to: %s", output)

	opts := e.opts
	if opts.SkipOutput {
		if abs, err := filepath.Abs(output); err == nil {
			opts.SkipPath = abs
		}
	}

	summary := &Summary{OutputPath: output}
	walkFiles(root, opts, e.con, func(path string) {
		index := len(summary.Records) + 1

		rel, err := relativePath(root, path)
		if err != nil {
			e.con.Warnf("%v", err)
		}
		e.con.Itemf(fmt.Sprintf("Processing file %d:", index), "%s", rel)

		summary.Records = append(summary.Records, FileRecord{
			Index:        index,
			RelativePath: rel,
			Content:      e.readContent(path, rel),
		})
	})

	if len(summary.Records) == 0 {
		e.con.Infof("No files found in the specified directory.")
		return summary, nil
	}

	summary.Text = joinRecords(summary.Records)
	e.con.Infof("\nFound %d files. Writing to %s...", len(summary.Records), output)
	if err := writeSummary(output, summary.Text); err != nil {
		e.con.Errorf("Could not write to output file '%s': %v", output, err)
		return summary, err
	}
	summary.Written = true
	e.con.Successf("Successfully created %s", output)
	return summary, nil
}

// readContent returns the decoded text of path, or a bracketed placeholder
// describing why it could not be read.
func (e *Extractor) readContent(path, rel string) (content string) {
	defer func() {
		if r := recover(); r != nil {
			e.con.Warnf("Unexpected error reading file: %s - %v", rel, r)
			content = fmt.Sprintf("[Unexpected error reading file: %v]", r)
		}
	}()

	data, err := e.readRegular(path)
	if err != nil {
		e.con.Warnf("Error reading file: %s - %v", rel, err)
		return fmt.Sprintf("[Error reading file: %v]", err)
	}
	return decodeText(data)
}

// readRegular reads path in full. Devices, pipes and sockets are refused
// without being opened.
func (e *Extractor) readRegular(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "read", Path: path, Err: errNotRegular}
	}
	return e.readFile(path)
}
