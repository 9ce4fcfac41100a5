package errors

import (
	"fmt"

	"cpv/internal/domain"

	terrors "gitlab.com/tozd/go/errors"
)

type Kind string

const (
	InvalidUsage Kind = "invalid_usage"
	PlanFailure  Kind = "plan_failure"
	IOFailure    Kind = "io_failure"
	Cancelled    Kind = "cancelled"
	Internal     Kind = "internal"
)

// Process exit codes. They are part of the command line contract.
const (
	ExitOK        = 0
	ExitFailures  = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf classifies err. A bare PlanError counts as PlanFailure so the engine
// does not need to know about AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if terrors.As(err, &appErr) {
		return appErr.Kind
	}
	var planErr *domain.PlanError
	if terrors.As(err, &planErr) {
		return PlanFailure
	}
	return Internal
}

func UserMessage(err error) string {
	var planErr *domain.PlanError
	if terrors.As(err, &planErr) {
		return "cpv: " + planErr.Error()
	}
	var appErr *AppError
	if !terrors.As(err, &appErr) {
		return "cpv: " + err.Error()
	}
	switch appErr.Kind {
	case InvalidUsage:
		return fmt.Sprintf("cpv: %v\nTry 'cpv --help' for more information.", appErr.Err)
	case IOFailure:
		return fmt.Sprintf("cpv: I/O error: %s: %v", appErr.Path, appErr.Err)
	case Cancelled:
		return "cpv: cancelled"
	default:
		return fmt.Sprintf("cpv: unexpected error: %v", appErr.Err)
	}
}

// ExitCode maps an error returned by the command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case InvalidUsage, PlanFailure:
		return ExitUsage
	case Cancelled:
		return ExitCancelled
	default:
		return ExitFailures
	}
}

// SummaryExitCode maps a finished run to the process exit code. Cancellation
// wins over failures.
func SummaryExitCode(summary domain.CopySummary) int {
	switch {
	case summary.Cancelled:
		return ExitCancelled
	case summary.FailedCount > 0:
		return ExitFailures
	default:
		return ExitOK
	}
}
