package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// console prints progress to out and problems to errOut. The CLI points both
// at stdout. Colors are dropped automatically when stdout is not a terminal.
type console struct {
	out    io.Writer
	errOut io.Writer

	success *color.Color
	warn    *color.Color
	fail    *color.Color
	label   *color.Color
}

func newConsole(out, errOut io.Writer) *console {
	return &console{
		out:     out,
		errOut:  errOut,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
	}
}

// Infof prints a plain progress line.
func (c *console) Infof(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Itemf prints an indented per-file line with a highlighted label.
func (c *console) Itemf(label, format string, args ...any) {
	fmt.Fprintf(c.out, "  %s %s\n", c.label.Sprint(label), fmt.Sprintf(format, args...))
}

func (c *console) Successf(format string, args ...any) {
	fmt.Fprintf(c.out, "%s\n", c.success.Sprintf(format, args...))
}

// Warnf reports a recoverable problem; the run continues.
func (c *console) Warnf(format string, args ...any) {
	fmt.Fprintf(c.errOut, "%s %s\n", c.warn.Sprint("Warning:"), fmt.Sprintf(format, args...))
}

// Errorf reports a failure of the current step.
func (c *console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.errOut, "%s %s\n", c.fail.Sprint("Error:"), fmt.Sprintf(format, args...))
}
