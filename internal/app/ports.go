package app

import (
	"io/fs"

	"cpv/internal/domain"

	"github.com/spf13/afero"
)

// FileSystem is everything the planner, executor and applicator need from
// the disk. Open/OpenFile/Mkdir/Rename/Remove/Chmod/Chtimes come from afero.
type FileSystem interface {
	afero.Fs
	Lstat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.FileInfo, error)
	Exists(path string) (bool, error)
	SameFile(a, b fs.FileInfo) bool
}

type Reporter interface {
	Report(event domain.ProgressEvent)
}

type ReporterFunc func(event domain.ProgressEvent)

func (f ReporterFunc) Report(event domain.ProgressEvent) { f(event) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(domain.ProgressEvent) {})

// ResultFunc is called once per operation as soon as its outcome is known.
type ResultFunc func(result domain.OperationResult)
