package domain

// CopyRequest describes one cpv invocation. It is built once by the CLI and
// never mutated afterwards.
type CopyRequest struct {
	SourcePath         string
	DestinationPath    string
	Recursive          bool
	PreserveAttributes bool
	ForceOverwrite     bool
	Verbose            bool
	// Excludes holds doublestar patterns matched against the slash separated
	// path of an entry relative to the source root.
	Excludes []string
}
