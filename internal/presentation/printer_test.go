package presentation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cpv/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan(files int) domain.CopyPlan {
	plan := domain.CopyPlan{}
	plan.Add(domain.CreateDirectory("/src", "/dst", domain.Metadata{Kind: domain.KindDirectory}))
	for i := 0; i < files; i++ {
		name := fmt.Sprintf("file%02d.txt", i)
		plan.Add(domain.CopyFile("/src/"+name, "/dst/"+name, domain.Metadata{Kind: domain.KindRegularFile, Size: 1024}))
	}
	plan.Add(domain.Skip("/src/sock", "/dst/sock", "unsupported file type"))
	return plan
}

func TestTruncateKeepsHeadAndTail(t *testing.T) {
	lines := formatPlanLines(samplePlan(6).Operations)
	require.Len(t, lines, 8)

	short := truncate(lines, 4)
	require.Len(t, short, 5)
	assert.Equal(t, lines[0], short[0])
	assert.Equal(t, "... 4 more ...", short[2])
	assert.Equal(t, lines[7], short[4])

	assert.Equal(t, lines[:3], truncate(lines[:3], 4))
}

func TestPrintDryRunOutputIncludesSections(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf, NoColor: true}

	printer.PrintDryRun(samplePlan(3))
	output := buf.String()

	assert.Contains(t, output, "Plan:")
	assert.Contains(t, output, "mkdir /dst")
	assert.Contains(t, output, "... 1 more ...")
	assert.Contains(t, output, "Would copy 3 files (3.0 KiB) and create 1 directories.")
	assert.Contains(t, output, "Would skip 1 entries.")
	assert.Contains(t, output, "nothing was copied")
}

func TestPrintDryRunVerboseListsEverything(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf, NoColor: true, Verbose: true}

	printer.PrintDryRun(samplePlan(6))
	output := buf.String()

	assert.NotContains(t, output, "more ...")
	assert.Contains(t, output, "copy  /src/file03.txt -> /dst/file03.txt  1.0 KiB")
	assert.Contains(t, output, "skip  /src/sock  (unsupported file type)")
}

func TestPrintDryRunCountsUnreadableEntries(t *testing.T) {
	var buf bytes.Buffer
	plan := samplePlan(1)
	plan.Add(domain.Fail("/src/locked", "/dst/locked", errors.New("permission denied")))

	Printer{Writer: &buf, NoColor: true, Verbose: true}.PrintDryRun(plan)
	output := buf.String()

	assert.Contains(t, output, "fail  /src/locked  (permission denied)")
	assert.Contains(t, output, "Would skip 1 entries.")
	assert.Contains(t, output, "Cannot read 1 entries.")
}

func TestPrintResult(t *testing.T) {
	copyOp := domain.CopyFile("/src/a", "/dst/a", domain.Metadata{Kind: domain.KindRegularFile})
	mkdir := domain.CreateDirectory("/src", "/dst", domain.Metadata{Kind: domain.KindDirectory})

	var quiet bytes.Buffer
	Printer{Writer: &quiet, NoColor: true}.PrintResult(domain.OperationResult{Operation: copyOp, Outcome: domain.Succeeded})
	assert.Empty(t, quiet.String())

	var buf bytes.Buffer
	printer := Printer{Writer: &buf, NoColor: true, Verbose: true}
	printer.PrintResult(domain.OperationResult{Operation: mkdir, Outcome: domain.Succeeded})
	printer.PrintResult(domain.OperationResult{Operation: mkdir, Outcome: domain.Succeeded, AlreadyExisted: true})
	printer.PrintResult(domain.OperationResult{Operation: copyOp, Outcome: domain.Succeeded})
	printer.PrintResult(domain.OperationResult{Operation: copyOp, Outcome: domain.Skipped, Reason: "destination exists"})
	printer.PrintResult(domain.OperationResult{Operation: copyOp, Outcome: domain.Failed, Err: errors.New("disk full")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"created directory '/dst'",
		"'/src/a' -> '/dst/a'",
		"skipped '/src/a': destination exists",
		"failed '/src/a': disk full",
	}, lines)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printer := Printer{Writer: &buf, NoColor: true}

	failedOp := domain.CopyFile("/src/b", "/dst/b", domain.Metadata{Kind: domain.KindRegularFile})
	printer.PrintSummary(domain.CopySummary{
		TotalFiles:         3,
		SucceededCount:     2,
		FailedCount:        1,
		SkippedCount:       1,
		DirectoriesCreated: 1,
		BytesCopied:        2048,
		Elapsed:            1500 * time.Millisecond,
		Results: []domain.OperationResult{
			{Operation: failedOp, Outcome: domain.Failed, Err: errors.New("permission denied")},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "Copied 2 of 3 files (2.0 KiB) in 1.5s, created 1 directories.")
	assert.Contains(t, output, "Skipped 1 entries.")
	assert.Contains(t, output, "1 operations failed:")
	assert.Contains(t, output, "/src/b: permission denied")
	assert.NotContains(t, output, "Cancelled")
}

func TestPrintSummaryCancelled(t *testing.T) {
	var buf bytes.Buffer
	Printer{Writer: &buf, NoColor: true}.PrintSummary(domain.CopySummary{TotalFiles: 4, Cancelled: true})
	assert.Contains(t, buf.String(), "Cancelled before all operations finished.")
}

func TestPrinterColors(t *testing.T) {
	var buf bytes.Buffer
	Printer{Writer: &buf}.PrintSummary(domain.CopySummary{TotalFiles: 1, SucceededCount: 1})
	assert.Contains(t, buf.String(), "\x1b[")
}
