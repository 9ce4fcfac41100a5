package app

import (
	"errors"

	"cpv/internal/domain"

	terrors "gitlab.com/tozd/go/errors"
)

// Capture snapshots path following symlinks.
func Capture(fsys FileSystem, path string) (domain.Metadata, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return domain.Metadata{}, terrors.Errorf("stat %s: %w", path, err)
	}
	return domain.NewMetadata(info), nil
}

// CaptureLink snapshots path itself without following a final symlink.
func CaptureLink(fsys FileSystem, path string) (domain.Metadata, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return domain.Metadata{}, terrors.Errorf("lstat %s: %w", path, err)
	}
	return domain.NewMetadata(info), nil
}

// Apply writes permission bits and timestamps from md onto target. Attributes
// the filesystem cannot represent are skipped.
func Apply(fsys FileSystem, md domain.Metadata, target string) error {
	if err := fsys.Chmod(target, md.Mode); err != nil && !unsupported(err) {
		return terrors.Errorf("chmod %s: %w", target, err)
	}
	if md.ModTime.IsZero() {
		return nil
	}
	if err := fsys.Chtimes(target, md.ModTime, md.ModTime); err != nil && !unsupported(err) {
		return terrors.Errorf("chtimes %s: %w", target, err)
	}
	return nil
}

// syscall.Errno matches ErrUnsupported for ENOSYS, ENOTSUP and EOPNOTSUPP.
func unsupported(err error) bool {
	return errors.Is(err, errors.ErrUnsupported)
}
