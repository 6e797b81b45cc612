// Package report renders the end-of-run summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/edseed/internal/pipeline"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// Entry is one domain's outcome. Result may be nil when the run failed
// before extraction.
type Entry struct {
	Domain string
	Result *pipeline.Result
	Err    error
}

type status int

const (
	statusOK status = iota
	statusPartial
	statusFailed
)

func (e Entry) status() status {
	switch {
	case e.Err == nil:
		return statusOK
	case errors.Is(e.Err, edseed.ErrLoadIncomplete):
		return statusPartial
	default:
		return statusFailed
	}
}

// Render returns the summary. styled adds colors and a border.
func Render(entries []Entry, runID string, styled bool) string {
	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(paint(titleStyle, "Seed summary"))
	if runID != "" {
		b.WriteString(paint(labelStyle, "  run "+runID))
	}
	b.WriteByte('\n')

	for _, e := range entries {
		var mark string
		switch e.status() {
		case statusOK:
			mark = paint(successStyle, symbolCheck)
		case statusPartial:
			mark = paint(warningStyle, symbolWarn)
		default:
			mark = paint(errorStyle, symbolCross)
		}

		fmt.Fprintf(&b, "%s %s", mark, e.Domain)
		if r := e.Result; r != nil {
			if r.Load.DryRun {
				b.WriteString(paint(labelStyle, " (dry run)"))
			}
			b.WriteByte('\n')
			fmt.Fprintf(&b, "    %s %d  %s %d  %s %d",
				paint(labelStyle, "rows"), r.Rows,
				paint(labelStyle, "invalid"), r.Invalid,
				paint(labelStyle, "records"), r.Records)
			if r.Overwritten > 0 || len(r.Skipped) > 0 {
				fmt.Fprintf(&b, "  %s %d  %s %d",
					paint(labelStyle, "overwritten"), r.Overwritten,
					paint(labelStyle, "skipped sources"), len(r.Skipped))
			}
			if !r.Load.DryRun && r.Load.Batches > 0 {
				fmt.Fprintf(&b, "\n    %s %d  %s %d  %s %d (%d fallback)",
					paint(labelStyle, "written"), r.Load.Succeeded,
					paint(labelStyle, "failed"), r.Load.Failed,
					paint(labelStyle, "batches"), r.Load.Batches, r.Load.FallbackBatches)
			}
			fmt.Fprintf(&b, "  %s", paint(labelStyle, r.Duration.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
		if e.Err != nil {
			fmt.Fprintf(&b, "    %s\n", paint(errorStyle, firstLine(e.Err.Error())))
		}
	}

	out := strings.TrimRight(b.String(), "\n")
	if styled {
		return boxStyle.Render(out)
	}
	return out
}

// Print writes the summary to w, styled when w is a terminal.
func Print(w io.Writer, entries []Entry, runID string) {
	fmt.Fprintln(w, Render(entries, runID, Styled(w)))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
