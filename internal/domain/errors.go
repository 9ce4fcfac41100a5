package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotFound            = errors.New("source not found")
	ErrRecursiveRequired         = errors.New("is a directory (not copied, try using -r)")
	ErrDestinationExists         = errors.New("destination exists (use -f to overwrite)")
	ErrNotADirectory             = errors.New("not a directory")
	ErrIsADirectory              = errors.New("cannot overwrite directory with non-directory")
	ErrSameFile                  = errors.New("source and destination are the same file")
	ErrDestinationParentNotFound = errors.New("destination parent directory not found")
	ErrUnsupportedSource         = errors.New("unsupported source file type")
)

// PlanError is a precondition violation found before anything was written.
type PlanError struct {
	Kind error
	Path string
	Err  error
}

func (e *PlanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Kind)
}

func (e *PlanError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewPlanError(kind error, path string, err error) *PlanError {
	return &PlanError{Kind: kind, Path: path, Err: err}
}
