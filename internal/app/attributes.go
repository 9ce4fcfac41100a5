package app

import (
	"slices"

	"cpv/internal/domain"
	"cpv/internal/logging"
)

// Applicator copies preserved permissions and timestamps onto finished
// destinations using the metadata captured while planning. It must run after
// every write, since writing into a directory bumps its mtime.
type Applicator struct {
	FS       FileSystem
	Logger   logging.Logger
	OnResult ResultFunc
}

// ApplyAll returns results with attribute failures turned into Failed
// outcomes. Files go first in plan order, then directories deepest first.
func (a *Applicator) ApplyAll(results []domain.OperationResult) []domain.OperationResult {
	stop := a.Logger.Measure("Applying attributes")
	defer stop()

	out := slices.Clone(results)
	for i := range out {
		if out[i].Outcome == domain.Succeeded && out[i].Operation.Kind == domain.OpCopyFile {
			a.apply(&out[i])
		}
	}
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Outcome == domain.Succeeded && out[i].Operation.Kind == domain.OpCreateDirectory {
			a.apply(&out[i])
		}
	}
	return out
}

func (a *Applicator) apply(res *domain.OperationResult) {
	op := res.Operation
	if err := Apply(a.FS, op.Metadata, op.Destination); err != nil {
		res.Outcome = domain.Failed
		res.Reason = "preserve attributes"
		res.Err = err
		a.Logger.Z().Warn().Err(err).Str("path", op.Destination).Msg("preserving attributes failed")
		if a.OnResult != nil {
			a.OnResult(*res)
		}
	}
}
