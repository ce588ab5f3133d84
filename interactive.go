package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

const (
	promptRoot   = "Enter the directory path to scan: "
	promptOutput = "Enter the desired name for the output file (e.g., code_summary.txt): "
)

// errAborted is returned when the user leaves the directory picker.
var errAborted = errors.New("selection aborted")

// prompter reads answers line by line from in, writing each question to out.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the next input line without its line
// ending. End of input after a partial line returns that line.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askRoot prompts for the directory to scan.
func (p *prompter) askRoot() (string, error) {
	return p.ask(promptRoot)
}

// askOutput prompts for the output name and normalizes it.
func (p *prompter) askOutput() (string, error) {
	name, err := p.ask(promptOutput)
	if err != nil {
		return "", err
	}
	return normalizeOutputName(name), nil
}

// pickDirectory lets the user choose the directory to scan with a fuzzy
// finder over base and the directories beneath it.
func pickDirectory(base string) (string, error) {
	candidates, err := listDirectories(base)
	if err != nil {
		return "", err
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the directory to summarize. Enter to confirm, Esc to abort."
			}
			entries, err := os.ReadDir(candidates[i])
			if err != nil {
				return fmt.Sprintf("Path: %s\nError listing directory: %v", candidates[i], err)
			}
			var b strings.Builder
			fmt.Fprintf(&b, "Path: %s\nEntries: %d\n\n", candidates[i], len(entries))
			for _, e := range entries {
				b.WriteString(e.Name())
				if e.IsDir() {
					b.WriteString("/")
				}
				b.WriteString("\n")
			}
			return b.String()
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errAborted
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return candidates[idx], nil
}

// listDirectories returns base and every directory beneath it, skipping
// hidden ones.
func listDirectories(base string) ([]string, error) {
	candidates := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == base || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for directories: %w", err)
	}
	return candidates, nil
}
