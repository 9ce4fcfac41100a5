package presentation

import (
	"fmt"
	"io"
	"time"

	"cpv/internal/domain"

	"github.com/dustin/go-humanize"
)

// LineReporter prints progress as plain lines, for output that is not a
// terminal. Intermediate events are thinned to one per Interval; the final
// event of every file is always printed.
type LineReporter struct {
	Writer   io.Writer
	Interval time.Duration

	last    time.Duration
	printed bool
}

func (r *LineReporter) Report(e domain.ProgressEvent) {
	if !e.Final() && r.printed && e.Elapsed-r.last < r.Interval {
		return
	}
	r.last = e.Elapsed
	r.printed = true
	fmt.Fprintln(r.Writer, FormatProgress(e))
}

// FormatProgress renders the plan-wide position of e followed by its path.
func FormatProgress(e domain.ProgressEvent) string {
	line := fmt.Sprintf("[%3.0f%%] %s / %s",
		e.Percent()*100,
		humanize.IBytes(uint64(e.PlanBytesCopied)),
		humanize.IBytes(uint64(e.PlanTotalBytes)))
	if rate := e.Throughput(); rate > 0 {
		line += fmt.Sprintf("  %s/s", humanize.IBytes(uint64(rate)))
	}
	if eta := e.ETA(); eta > 0 {
		line += fmt.Sprintf("  ETA %s", eta.Round(time.Second))
	}
	return line + "  " + e.Path
}
