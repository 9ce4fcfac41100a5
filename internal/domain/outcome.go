package domain

import "time"

type Outcome int

const (
	Succeeded Outcome = iota
	Skipped
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "cancelled"
	}
}

type OperationResult struct {
	Index     int
	Operation CopyOperation
	Outcome   Outcome
	Reason    string
	Err       error
	Bytes     int64
	// AlreadyExisted marks a CreateDirectory that found its directory in place.
	AlreadyExisted bool
}

type CopySummary struct {
	TotalFiles         int
	TotalBytes         int64
	SucceededCount     int
	FailedCount        int
	SkippedCount       int
	DirectoriesCreated int
	BytesCopied        int64
	Elapsed            time.Duration
	Cancelled          bool
	Results            []OperationResult
}

func NewSummary(plan CopyPlan) CopySummary {
	return CopySummary{
		TotalFiles: plan.TotalFiles,
		TotalBytes: plan.TotalBytes,
		Results:    make([]OperationResult, 0, len(plan.Operations)),
	}
}

// Record appends a result and updates the counters. Succeeded counts only
// file copies; directory creation is tracked separately.
func (s *CopySummary) Record(r OperationResult) {
	s.Results = append(s.Results, r)
	s.tally(r)
}

func (s *CopySummary) tally(r OperationResult) {
	switch r.Outcome {
	case Succeeded:
		switch r.Operation.Kind {
		case OpCopyFile:
			s.SucceededCount++
			s.BytesCopied += r.Bytes
		case OpCreateDirectory:
			if !r.AlreadyExisted {
				s.DirectoriesCreated++
			}
		}
	case Skipped:
		s.SkippedCount++
	case Failed:
		s.FailedCount++
	case Cancelled:
		s.Cancelled = true
	}
}

// Recount rebuilds the counters from Results after results were rewritten.
func (s *CopySummary) Recount() {
	s.SucceededCount, s.FailedCount, s.SkippedCount = 0, 0, 0
	s.DirectoriesCreated, s.BytesCopied = 0, 0
	cancelled := s.Cancelled
	for _, r := range s.Results {
		s.tally(r)
	}
	s.Cancelled = s.Cancelled || cancelled
}

func (s CopySummary) Failures() []OperationResult {
	var out []OperationResult
	for _, r := range s.Results {
		if r.Outcome == Failed {
			out = append(out, r)
		}
	}
	return out
}
