package app

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cpv/internal/domain"
	"cpv/internal/logging"

	"github.com/google/uuid"
	terrors "gitlab.com/tozd/go/errors"
)

// DefaultBufferSize is the chunk size for file transfers.
const DefaultBufferSize = 256 * 1024

const (
	reasonDestinationExists = "destination exists"
	reasonParentUnavailable = "parent directory unavailable"
)

// Executor runs a CopyPlan sequentially. A failing operation is recorded and
// the batch continues, except that a failed CreateDirectory skips everything
// planned beneath it. OpFail operations carry a planning error and are
// recorded as Failed without touching the filesystem.
type Executor struct {
	FS             FileSystem
	Logger         logging.Logger
	BufferSize     int
	ReportInterval time.Duration
	OnResult       ResultFunc
	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *Executor) Execute(ctx context.Context, plan domain.CopyPlan, reporter Reporter) domain.CopySummary {
	if reporter == nil {
		reporter = Discard
	}
	stop := e.Logger.Measure("Executing plan")
	defer stop()

	run := e.newRun(plan, reporter)
	summary := domain.NewSummary(plan)

	var unavailable []string
	for i, op := range plan.Operations {
		if ctx.Err() != nil {
			for j := i; j < len(plan.Operations); j++ {
				summary.Record(cancelled(j, plan.Operations[j]))
			}
			e.Logger.Infof("Copy cancelled after %d of %d operations", i, len(plan.Operations))
			break
		}

		var res domain.OperationResult
		if dir, ok := nestedUnder(op.Destination, unavailable); ok && op.Kind != domain.OpSkip && op.Kind != domain.OpFail {
			res = skipped(i, op, reasonParentUnavailable+": "+dir)
		} else {
			switch op.Kind {
			case domain.OpCreateDirectory:
				res = run.createDirectory(i, op)
				if res.Outcome == domain.Failed {
					unavailable = append(unavailable, op.Destination)
				}
			case domain.OpCopyFile:
				res = run.copyFile(ctx, i, op)
			case domain.OpFail:
				res = failed(i, op, op.Err)
			default:
				res = skipped(i, op, op.Reason)
			}
		}

		summary.Record(res)
		e.notify(res)
	}

	summary.Elapsed = run.now().Sub(run.start)
	return summary
}

func (e *Executor) notify(res domain.OperationResult) {
	log := e.Logger.Z()
	switch res.Outcome {
	case domain.Failed:
		log.Warn().Err(res.Err).Str("path", res.Operation.Source).Msg("operation failed")
	case domain.Skipped:
		log.Debug().Str("path", res.Operation.Source).Str("reason", res.Reason).Msg("operation skipped")
	case domain.Succeeded:
		log.Debug().Str("path", res.Operation.Destination).Int64("bytes", res.Bytes).Msg(res.Operation.Kind.String())
	}
	if e.OnResult != nil {
		e.OnResult(res)
	}
}

func (e *Executor) newRun(plan domain.CopyPlan, reporter Reporter) *execution {
	size := e.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	interval := e.ReportInterval
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	now := e.Now
	if now == nil {
		now = time.Now
	}
	return &execution{
		fs:       e.FS,
		logger:   e.Logger,
		plan:     plan,
		reporter: reporter,
		buf:      make([]byte, size),
		throttle: throttle{interval: interval},
		now:      now,
		start:    now(),
	}
}

// execution holds the state of one Execute call: the shared transfer buffer
// and the running byte counter behind plan-wide progress.
type execution struct {
	fs         FileSystem
	logger     logging.Logger
	plan       domain.CopyPlan
	reporter   Reporter
	buf        []byte
	throttle   throttle
	now        func() time.Time
	start      time.Time
	planCopied int64
}

func (x *execution) createDirectory(index int, op domain.CopyOperation) domain.OperationResult {
	res := domain.OperationResult{Index: index, Operation: op}
	// Owner rwx keeps the directory writable for its children; preserved
	// modes are applied after all content is in place.
	err := x.fs.Mkdir(op.Destination, op.Metadata.Mode|0o700)
	if err == nil {
		res.Outcome = domain.Succeeded
		return res
	}
	if errors.Is(err, fs.ErrExist) {
		if info, serr := x.fs.Stat(op.Destination); serr == nil && info.IsDir() {
			res.Outcome = domain.Succeeded
			res.AlreadyExisted = true
			return res
		}
	}
	res.Outcome = domain.Failed
	res.Err = terrors.Errorf("create directory %s: %w", op.Destination, err)
	return res
}

// copyFile writes new destinations in place and removes them again on
// failure. An existing destination (only reachable with ForceOverwrite) is
// replaced through a sibling temp file so a failed transfer leaves it intact.
func (x *execution) copyFile(ctx context.Context, index int, op domain.CopyOperation) domain.OperationResult {
	res := domain.OperationResult{Index: index, Operation: op}

	exists, err := x.fs.Exists(op.Destination)
	if err != nil {
		return failed(index, op, terrors.Errorf("check destination %s: %w", op.Destination, err))
	}
	if exists && !x.plan.Request.ForceOverwrite {
		return skipped(index, op, reasonDestinationExists)
	}

	src, err := x.fs.Open(op.Source)
	if err != nil {
		return failed(index, op, terrors.Errorf("open source %s: %w", op.Source, err))
	}
	defer src.Close()

	writePath := op.Destination
	mode := op.Metadata.Mode
	if exists {
		writePath = tempPath(op.Destination)
		// Without -p the replaced file keeps its own permissions.
		if !x.plan.Request.PreserveAttributes {
			if info, serr := x.fs.Stat(op.Destination); serr == nil {
				mode = info.Mode().Perm()
			}
		}
	}
	dst, err := x.fs.OpenFile(writePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return failed(index, op, terrors.Errorf("create %s: %w", writePath, err))
	}

	n, err := x.stream(ctx, index, op, src, dst)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = terrors.Errorf("close %s: %w", writePath, cerr)
	}
	if err == nil && exists {
		if rerr := x.fs.Rename(writePath, op.Destination); rerr != nil {
			err = terrors.Errorf("replace %s: %w", op.Destination, rerr)
		}
	}
	if err != nil {
		x.planCopied -= n
		if rmErr := x.fs.Remove(writePath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			x.logger.Warnf("Could not remove partial file %s: %v", writePath, rmErr)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return cancelled(index, op)
		}
		return failed(index, op, err)
	}

	x.report(index, op, n, n, true)
	res.Outcome = domain.Succeeded
	res.Bytes = n
	return res
}

func (x *execution) stream(ctx context.Context, index int, op domain.CopyOperation, src io.Reader, dst io.Writer) (int64, error) {
	var copied int64
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, rerr := src.Read(x.buf)
		if n > 0 {
			if _, werr := dst.Write(x.buf[:n]); werr != nil {
				return copied, terrors.Errorf("write %s: %w", op.Destination, werr)
			}
			copied += int64(n)
			x.planCopied += int64(n)
			if copied < op.Size {
				x.report(index, op, copied, op.Size, false)
			}
		}
		if rerr == io.EOF {
			return copied, nil
		}
		if rerr != nil {
			return copied, terrors.Errorf("read %s: %w", op.Source, rerr)
		}
	}
}

// report emits a progress event. Intermediate events pass through the
// throttle, final ones always go out.
func (x *execution) report(index int, op domain.CopyOperation, copied, total int64, final bool) {
	now := x.now()
	if final {
		x.throttle.mark(now)
	} else if !x.throttle.allow(now) {
		return
	}
	x.reporter.Report(domain.ProgressEvent{
		OperationIndex:  index,
		OperationCount:  len(x.plan.Operations),
		Path:            op.Destination,
		BytesCopied:     copied,
		TotalBytes:      total,
		PlanBytesCopied: x.planCopied,
		PlanTotalBytes:  x.plan.TotalBytes,
		Elapsed:         now.Sub(x.start),
	})
}

func tempPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".cpv-"+uuid.NewString())
}

// nestedUnder reports the first directory in dirs that strictly contains p.
func nestedUnder(p string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return dir, true
	}
	return "", false
}

func skipped(index int, op domain.CopyOperation, reason string) domain.OperationResult {
	return domain.OperationResult{Index: index, Operation: op, Outcome: domain.Skipped, Reason: reason}
}

func failed(index int, op domain.CopyOperation, err error) domain.OperationResult {
	return domain.OperationResult{Index: index, Operation: op, Outcome: domain.Failed, Err: err}
}

func cancelled(index int, op domain.CopyOperation) domain.OperationResult {
	return domain.OperationResult{Index: index, Operation: op, Outcome: domain.Cancelled, Reason: "cancelled"}
}
