package domain

import (
	"io/fs"
	"time"
)

type EntryKind int

const (
	KindOther EntryKind = iota
	KindRegularFile
	KindDirectory
	KindSymlink
)

func (k EntryKind) String() string {
	switch k {
	case KindRegularFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindOf classifies a file mode. Devices, sockets and named pipes are all
// reported as KindOther.
func KindOf(mode fs.FileMode) EntryKind {
	switch {
	case mode.IsRegular():
		return KindRegularFile
	case mode.IsDir():
		return KindDirectory
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Metadata is a snapshot of an entry taken while planning.
type Metadata struct {
	Kind    EntryKind
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

func NewMetadata(info fs.FileInfo) Metadata {
	md := Metadata{
		Kind:    KindOf(info.Mode()),
		Mode:    info.Mode().Perm(),
		ModTime: info.ModTime(),
	}
	if md.Kind == KindRegularFile {
		md.Size = info.Size()
	}
	return md
}
