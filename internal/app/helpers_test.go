package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cpv/internal/domain"
	fsadapter "cpv/internal/infra/fs"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// memFS builds an in-memory tree. Keys ending in "/" are directories.
func memFS(t *testing.T, tree map[string]string) fsadapter.FS {
	t.Helper()
	mem := fsadapter.New(afero.NewMemMapFs())
	require.NoError(t, mem.MkdirAll("/work", 0o755))
	for name, content := range tree {
		if strings.HasSuffix(name, "/") {
			require.NoError(t, mem.MkdirAll(name, 0o755))
			continue
		}
		require.NoError(t, mem.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(mem, name, []byte(content), 0o644))
	}
	return mem
}

func readFile(t *testing.T, fsys afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, name)
	require.NoError(t, err)
	return string(data)
}

// faultyFS injects errors into selected paths of an otherwise working
// filesystem. writeLimit keys are matched as substrings of the opened path so
// that temp files for forced overwrites are caught too.
type faultyFS struct {
	fsadapter.FS
	mkdirErr   map[string]error
	readDirErr map[string]error
	statErr    map[string]error
	writeLimit map[string]int
	chmodErr   error
}

func (f faultyFS) ReadDir(name string) ([]fs.FileInfo, error) {
	if err, ok := f.readDirErr[name]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f.FS.ReadDir(name)
}

func (f faultyFS) Stat(name string) (fs.FileInfo, error) {
	if err, ok := f.statErr[name]; ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return f.FS.Stat(name)
}

func (f faultyFS) Mkdir(name string, perm os.FileMode) error {
	if err, ok := f.mkdirErr[name]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return f.FS.Mkdir(name, perm)
}

func (f faultyFS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	for key, limit := range f.writeLimit {
		if strings.Contains(name, key) {
			return &failingFile{File: file, limit: limit}, nil
		}
	}
	return file, nil
}

func (f faultyFS) Chmod(name string, mode os.FileMode) error {
	if f.chmodErr != nil {
		return &fs.PathError{Op: "chmod", Path: name, Err: f.chmodErr}
	}
	return f.FS.Chmod(name, mode)
}

var errDiskFull = errors.New("no space left on device")

type failingFile struct {
	afero.File
	limit   int
	written int
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.written+len(p) > f.limit {
		return 0, errDiskFull
	}
	n, err := f.File.Write(p)
	f.written += n
	return n, err
}

// recorder collects progress events.
type recorder struct {
	events  []domain.ProgressEvent
	onEvent func(domain.ProgressEvent)
}

func (r *recorder) Report(event domain.ProgressEvent) {
	r.events = append(r.events, event)
	if r.onEvent != nil {
		r.onEvent(event)
	}
}

func (r *recorder) finals(path string) []domain.ProgressEvent {
	var out []domain.ProgressEvent
	for _, e := range r.events {
		if e.Path == path && e.Final() {
			out = append(out, e)
		}
	}
	return out
}

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func outcomes(summary domain.CopySummary) map[string]domain.OperationResult {
	out := make(map[string]domain.OperationResult, len(summary.Results))
	for _, r := range summary.Results {
		out[r.Operation.Destination] = r
	}
	return out
}
