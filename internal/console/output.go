// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package console formats command line output for humans, pipes and JSON consumers.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// OutputState holds output configuration.
type OutputState struct {
	Verbose bool
	JSON    bool
	Plain   bool
	Quiet   bool
	NoColor bool

	Out io.Writer
	Err io.Writer
}

// DefaultOutput writes to the process stdout and stderr.
var DefaultOutput = NewOutput(os.Stdout, os.Stderr) //nolint:gochecknoglobals

// NewOutput creates an OutputState writing results to out and messages to errOut.
func NewOutput(out, errOut io.Writer) *OutputState {
	return &OutputState{Out: out, Err: errOut}
}

// SetMode configures output mode.
func (o *OutputState) SetMode(verbose, json, plain, quiet bool) {
	o.Verbose = verbose
	o.JSON = json
	o.Plain = plain
	o.Quiet = quiet
}

// IsTTY checks if output is going to a terminal (not piped/redirected).
func (o *OutputState) IsTTY() bool {
	f, ok := o.Out.(*os.File)

	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}

func (o *OutputState) styled() bool {
	return !o.JSON && !o.Plain && !o.NoColor && o.IsTTY()
}

// Bold formats text with bold when in TTY, uppercase when piped.
func (o *OutputState) Bold(text string) string {
	switch {
	case o.JSON || o.Plain:
		return text
	case o.styled():
		return lipgloss.NewStyle().Bold(true).Render(text)
	default:
		return strings.ToUpper(text)
	}
}

// Header formats section headers consistently.
func (o *OutputState) Header(text string) string {
	return o.Bold(text)
}

// Progressf writes progress messages to stderr (only if verbose and not JSON/Plain).
func (o *OutputState) Progressf(format string, args ...any) {
	if o.Verbose && !o.JSON && !o.Plain {
		_, _ = fmt.Fprintf(o.Err, format+"\n", args...)
	}
}

// Successf writes success messages to stderr (only if not JSON/Plain/Quiet).
func (o *OutputState) Successf(format string, args ...any) {
	if !o.JSON && !o.Plain && !o.Quiet {
		_, _ = fmt.Fprintf(o.Err, "✓ "+format+"\n", args...)
	}
}

// Infof writes informational messages to stderr (only if not JSON/Plain/Quiet).
func (o *OutputState) Infof(format string, args ...any) {
	if !o.JSON && !o.Plain && !o.Quiet {
		_, _ = fmt.Fprintf(o.Err, format+"\n", args...)
	}
}

// Warningf writes warning messages to stderr (always visible unless quiet).
func (o *OutputState) Warningf(format string, args ...any) {
	switch {
	case o.Quiet:
	case o.Plain:
		_, _ = fmt.Fprintf(o.Err, "warning: "+format+"\n", args...)
	default:
		_, _ = fmt.Fprintf(o.Err, "⚠ "+format+"\n", args...)
	}
}

// Errorf writes error messages to stderr (always visible).
func (o *OutputState) Errorf(format string, args ...any) {
	if o.Plain {
		_, _ = fmt.Fprintf(o.Err, "error: "+format+"\n", args...)
	} else {
		_, _ = fmt.Fprintf(o.Err, "✗ "+format+"\n", args...)
	}
}

// JSONResult writes structured JSON results to stdout.
func (o *OutputState) JSONResult(status string, data map[string]any) {
	result := map[string]any{
		"status": status,
	}
	maps.Copy(result, data)

	enc := json.NewEncoder(o.Out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		_, _ = fmt.Fprintf(o.Err, "error encoding JSON: %v\n", err)
	}
}

// ErrorResult reports an error, as JSON on stdout when requested and always on stderr.
func (o *OutputState) ErrorResult(err error, code int) {
	if o.JSON {
		o.JSONResult("error", map[string]any{
			"error": err.Error(),
			"code":  code,
		})
	}

	o.Errorf("%s", err.Error())
}

// PlainKeyValue outputs key:value pairs for machine parsing.
func (o *OutputState) PlainKeyValue(key, value string) {
	_, _ = fmt.Fprintf(o.Out, "%s:%s\n", key, value)
}

// PlainList outputs a simple list of items, one per line.
func (o *OutputState) PlainList(items []string) {
	for _, item := range items {
		_, _ = fmt.Fprintf(o.Out, "%s\n", item)
	}
}

// Line writes a single line to stdout.
func (o *OutputState) Line(format string, args ...any) {
	_, _ = fmt.Fprintf(o.Out, format+"\n", args...)
}

// Table writes rows as aligned columns. The first row is the header.
func (o *OutputState) Table(rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(rows[0]))

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	for r, row := range rows {
		cells := make([]string, len(row))

		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}

			cells[i] = runewidth.FillRight(cell, widths[i])
		}

		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if r == 0 {
			line = o.Header(line)
		}

		_, _ = fmt.Fprintln(o.Out, line)
	}
}
