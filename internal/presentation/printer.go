package presentation

import (
	"fmt"
	"io"
	"time"

	"cpv/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Printer renders plans, per-operation results and summaries as plain text.
type Printer struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

func (p Printer) PrintDryRun(plan domain.CopyPlan) {
	fmt.Fprintln(p.Writer, p.paint(color.Bold, "Plan:"))
	fmt.Fprintln(p.Writer)

	lines := formatPlanLines(plan.Operations)
	if !p.Verbose {
		lines = truncate(lines, 4)
	}
	for _, line := range lines {
		fmt.Fprintln(p.Writer, "  "+line)
	}

	skips, unreadable := 0, 0
	for _, op := range plan.Operations {
		switch op.Kind {
		case domain.OpSkip:
			skips++
		case domain.OpFail:
			unreadable++
		}
	}

	fmt.Fprintln(p.Writer)
	fmt.Fprintf(p.Writer, "Would copy %d files (%s) and create %d directories.\n",
		plan.TotalFiles, humanize.IBytes(uint64(plan.TotalBytes)), plan.Directories())
	if skips > 0 {
		fmt.Fprintln(p.Writer, p.paint(color.FgYellow, fmt.Sprintf("Would skip %d entries.", skips)))
	}
	if unreadable > 0 {
		fmt.Fprintln(p.Writer, p.paint(color.FgRed, fmt.Sprintf("Cannot read %d entries.", unreadable)))
	}
	fmt.Fprintln(p.Writer, p.paint(color.Faint, "Dry run: nothing was copied."))
}

// PrintResult writes one line per finished operation in the style of cp -v.
// Successful operations are only printed in verbose mode.
func (p Printer) PrintResult(res domain.OperationResult) {
	op := res.Operation
	switch res.Outcome {
	case domain.Succeeded:
		if !p.Verbose {
			return
		}
		if op.Kind == domain.OpCreateDirectory {
			if res.AlreadyExisted {
				return
			}
			fmt.Fprintf(p.Writer, "created directory '%s'\n", op.Destination)
			return
		}
		fmt.Fprintf(p.Writer, "'%s' -> '%s'\n", op.Source, op.Destination)
	case domain.Skipped:
		if !p.Verbose {
			return
		}
		fmt.Fprintln(p.Writer, p.paint(color.FgYellow, fmt.Sprintf("skipped '%s': %s", op.Source, res.Reason)))
	case domain.Failed:
		fmt.Fprintln(p.Writer, p.paint(color.FgRed, fmt.Sprintf("failed '%s': %v", op.Source, res.Err)))
	}
}

func (p Printer) PrintSummary(summary domain.CopySummary) {
	elapsed := summary.Elapsed.Round(time.Millisecond)
	line := fmt.Sprintf("Copied %d of %d files (%s) in %s",
		summary.SucceededCount, summary.TotalFiles, humanize.IBytes(uint64(summary.BytesCopied)), elapsed)
	if summary.DirectoriesCreated > 0 {
		line += fmt.Sprintf(", created %d directories", summary.DirectoriesCreated)
	}
	fmt.Fprintln(p.Writer, p.paint(color.FgGreen, line+"."))

	if summary.SkippedCount > 0 {
		fmt.Fprintln(p.Writer, p.paint(color.FgYellow, fmt.Sprintf("Skipped %d entries.", summary.SkippedCount)))
	}
	p.PrintFailures(summary)
	if summary.Cancelled {
		fmt.Fprintln(p.Writer, p.paint(color.FgRed, "Cancelled before all operations finished."))
	}
}

// PrintFailures lists every failed operation of summary, if any.
func (p Printer) PrintFailures(summary domain.CopySummary) {
	failures := summary.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(p.Writer, p.paint(color.FgRed, fmt.Sprintf("%d operations failed:", len(failures))))
	for _, res := range failures {
		fmt.Fprintf(p.Writer, "  %s: %v\n", res.Operation.Source, res.Err)
	}
}

func (p Printer) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if p.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

func formatPlanLines(ops []domain.CopyOperation) []string {
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case domain.OpCreateDirectory:
			lines = append(lines, fmt.Sprintf("mkdir %s", op.Destination))
		case domain.OpCopyFile:
			lines = append(lines, fmt.Sprintf("copy  %s -> %s  %s", op.Source, op.Destination, humanize.IBytes(uint64(op.Size))))
		case domain.OpFail:
			lines = append(lines, fmt.Sprintf("fail  %s  (%v)", op.Source, op.Err))
		default:
			lines = append(lines, fmt.Sprintf("skip  %s  (%s)", op.Source, op.Reason))
		}
	}
	return lines
}

// truncate keeps the first and last half of limit lines around an ellipsis.
func truncate(lines []string, limit int) []string {
	if len(lines) <= limit {
		return lines
	}
	half := limit / 2
	out := make([]string, 0, limit+1)
	out = append(out, lines[:half]...)
	out = append(out, fmt.Sprintf("... %d more ...", len(lines)-limit))
	return append(out, lines[len(lines)-half:]...)
}
