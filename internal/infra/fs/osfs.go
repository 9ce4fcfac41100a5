package fs

import (
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// FS adapts an afero filesystem to the engine's port. Production code wraps
// afero.NewOsFs, tests wrap afero.NewMemMapFs.
type FS struct {
	afero.Fs
}

func New(base afero.Fs) FS {
	return FS{Fs: base}
}

func NewOS() FS {
	return New(afero.NewOsFs())
}

// Lstat falls back to Stat on filesystems without link support.
func (f FS) Lstat(path string) (fs.FileInfo, error) {
	if lstater, ok := f.Fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return f.Fs.Stat(path)
}

// ReadDir returns the entries of path sorted by name.
func (f FS) ReadDir(path string) ([]fs.FileInfo, error) {
	return afero.ReadDir(f.Fs, path)
}

func (f FS) Exists(path string) (bool, error) {
	return afero.Exists(f.Fs, path)
}

func (FS) SameFile(a, b fs.FileInfo) bool {
	return os.SameFile(a, b)
}
