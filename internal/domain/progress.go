package domain

import "time"

type ProgressEvent struct {
	OperationIndex  int
	OperationCount  int
	Path            string
	BytesCopied     int64
	TotalBytes      int64
	PlanBytesCopied int64
	PlanTotalBytes  int64
	Elapsed         time.Duration
}

// Final reports whether the event closes its operation.
func (e ProgressEvent) Final() bool {
	return e.BytesCopied == e.TotalBytes
}

// Percent is the plan-wide completion in the range [0, 1].
func (e ProgressEvent) Percent() float64 {
	if e.PlanTotalBytes <= 0 {
		return 1
	}
	// Sources that grew after planning copy more than was planned.
	return min(float64(e.PlanBytesCopied)/float64(e.PlanTotalBytes), 1)
}

// Throughput returns bytes per second over the elapsed time.
func (e ProgressEvent) Throughput() float64 {
	if e.Elapsed <= 0 {
		return 0
	}
	return float64(e.PlanBytesCopied) / e.Elapsed.Seconds()
}

// ETA extrapolates the remaining time from the current throughput. It is zero
// when nothing has been copied yet.
func (e ProgressEvent) ETA() time.Duration {
	rate := e.Throughput()
	if rate <= 0 {
		return 0
	}
	remaining := e.PlanTotalBytes - e.PlanBytesCopied
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}
