package domain

type OperationKind int

const (
	OpCreateDirectory OperationKind = iota
	OpCopyFile
	OpSkip
	// OpFail records a source that could not be read while planning.
	OpFail
)

func (k OperationKind) String() string {
	switch k {
	case OpCreateDirectory:
		return "mkdir"
	case OpCopyFile:
		return "copy"
	case OpFail:
		return "fail"
	default:
		return "skip"
	}
}

type CopyOperation struct {
	Kind        OperationKind
	Source      string
	Destination string
	Size        int64
	// SourceKind is what lstat reported for Source. A symlink keeps
	// KindSymlink here while Metadata describes its dereferenced target.
	SourceKind EntryKind
	Metadata   Metadata
	// Reason is set for OpSkip.
	Reason string
	// Err is set for OpFail.
	Err error
}

func CreateDirectory(src, dst string, md Metadata) CopyOperation {
	return CopyOperation{Kind: OpCreateDirectory, Source: src, Destination: dst, SourceKind: md.Kind, Metadata: md}
}

func CopyFile(src, dst string, md Metadata) CopyOperation {
	return CopyOperation{Kind: OpCopyFile, Source: src, Destination: dst, Size: md.Size, SourceKind: md.Kind, Metadata: md}
}

func Skip(src, dst, reason string) CopyOperation {
	return CopyOperation{Kind: OpSkip, Source: src, Destination: dst, Reason: reason}
}

// Fail plans a Failed outcome for src, which is excluded from the copy.
func Fail(src, dst string, err error) CopyOperation {
	return CopyOperation{Kind: OpFail, Source: src, Destination: dst, Err: err}
}

type CopyPlan struct {
	Request    CopyRequest
	Root       string
	Operations []CopyOperation
	TotalFiles int
	TotalBytes int64
}

func (p *CopyPlan) Add(op CopyOperation) {
	p.Operations = append(p.Operations, op)
	if op.Kind == OpCopyFile {
		p.TotalFiles++
		p.TotalBytes += op.Size
	}
}

// Directories returns the number of CreateDirectory operations.
func (p CopyPlan) Directories() int {
	n := 0
	for _, op := range p.Operations {
		if op.Kind == OpCreateDirectory {
			n++
		}
	}
	return n
}
