package app

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"cpv/internal/domain"
	"cpv/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	terrors "gitlab.com/tozd/go/errors"
)

// ProgressFunc is called during scanning with the number of planned
// operations and the bytes they will copy.
type ProgressFunc func(operations int, bytes int64)

const (
	reasonUnsupported = "unsupported file type"
	reasonDangling    = "dangling symlink"
	reasonLoop        = "symlink loop"
	reasonExcluded    = "excluded"
)

// Planner turns a CopyRequest into a CopyPlan without touching the
// destination. Symlinks are dereferenced: a link to a file becomes a regular
// file with the target's content and a link to a directory is walked.
type Planner struct {
	FS         FileSystem
	Logger     logging.Logger
	OnProgress ProgressFunc
}

func (p *Planner) Plan(ctx context.Context, req domain.CopyRequest) (domain.CopyPlan, error) {
	if p.FS == nil {
		return domain.CopyPlan{}, errors.New("planner requires FS")
	}

	stop := p.Logger.Measure("Planning copy")
	defer stop()

	src := filepath.Clean(req.SourcePath)
	dst := filepath.Clean(req.DestinationPath)

	srcInfo, err := p.FS.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CopyPlan{}, domain.NewPlanError(domain.ErrSourceNotFound, src, nil)
		}
		return domain.CopyPlan{}, terrors.Errorf("stat source %s: %w", src, err)
	}
	srcKind := domain.KindOf(srcInfo.Mode())
	switch {
	case srcKind == domain.KindDirectory && !req.Recursive:
		return domain.CopyPlan{}, domain.NewPlanError(domain.ErrRecursiveRequired, src, nil)
	case srcKind == domain.KindOther:
		return domain.CopyPlan{}, domain.NewPlanError(domain.ErrUnsupportedSource, src, nil)
	}

	// A trailing separator names a directory. Clean drops it, so a file
	// copied to "missing/" must be rejected here.
	if srcKind == domain.KindRegularFile && hasTrailingSeparator(req.DestinationPath) {
		info, err := p.FS.Stat(dst)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
			return domain.CopyPlan{}, domain.NewPlanError(domain.ErrNotADirectory, dst, nil)
		}
	}

	target, err := p.resolveTarget(src, dst, srcInfo, req.ForceOverwrite)
	if err != nil {
		return domain.CopyPlan{}, err
	}
	p.Logger.Verbosef("Resolved destination %s -> %s", dst, target)

	linkKind := domain.KindOf(srcInfo.Mode())
	if linfo, err := p.FS.Lstat(src); err == nil {
		linkKind = domain.KindOf(linfo.Mode())
	}

	plan := domain.CopyPlan{Request: req, Root: target}
	if srcKind == domain.KindRegularFile {
		op := domain.CopyFile(src, target, domain.NewMetadata(srcInfo))
		op.SourceKind = linkKind
		plan.Add(op)
		p.report(plan)
	} else {
		w := walker{planner: p, plan: &plan, excludes: req.Excludes}
		if err := w.walk(ctx, src, target, "", srcInfo, linkKind, nil); err != nil {
			return domain.CopyPlan{}, err
		}
	}

	p.Logger.Verbosef("Planned %d operations (%d files, %d directories, %s)",
		len(plan.Operations), plan.TotalFiles, plan.Directories(), humanize.IBytes(uint64(plan.TotalBytes)))
	return plan, nil
}

// resolveTarget applies copy-into-directory semantics and checks the
// destination preconditions.
func (p *Planner) resolveTarget(src, dst string, srcInfo fs.FileInfo, force bool) (string, error) {
	target := dst
	dstInfo, err := p.FS.Stat(dst)
	switch {
	case err == nil && dstInfo.IsDir():
		target = filepath.Join(dst, filepath.Base(src))
	case err == nil, errors.Is(err, fs.ErrNotExist):
	default:
		return "", terrors.Errorf("stat destination %s: %w", dst, err)
	}

	targetInfo, err := p.FS.Stat(target)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", terrors.Errorf("stat destination %s: %w", target, err)
		}
		parent := filepath.Dir(target)
		if info, err := p.FS.Stat(parent); err != nil || !info.IsDir() {
			return "", domain.NewPlanError(domain.ErrDestinationParentNotFound, parent, nil)
		}
		return target, nil
	}

	if p.FS.SameFile(srcInfo, targetInfo) {
		return "", domain.NewPlanError(domain.ErrSameFile, target, nil)
	}
	switch {
	case srcInfo.IsDir() && !targetInfo.IsDir():
		return "", domain.NewPlanError(domain.ErrNotADirectory, target, nil)
	case !srcInfo.IsDir() && targetInfo.IsDir():
		return "", domain.NewPlanError(domain.ErrIsADirectory, target, nil)
	case !srcInfo.IsDir() && !force:
		return "", domain.NewPlanError(domain.ErrDestinationExists, target, nil)
	}
	// Directory onto an existing directory merges; collisions are decided per
	// file while executing.
	return target, nil
}

func hasTrailingSeparator(name string) bool {
	return len(name) > 1 && (strings.HasSuffix(name, "/") || strings.HasSuffix(name, string(filepath.Separator)))
}

func (p *Planner) report(plan domain.CopyPlan) {
	if p.OnProgress != nil {
		p.OnProgress(len(plan.Operations), plan.TotalBytes)
	}
}

type walker struct {
	planner  *Planner
	plan     *domain.CopyPlan
	excludes []string
}

// walk adds dir itself before its children, so every CopyFile follows the
// CreateDirectory of its parent. ancestors holds the directories on the
// current path and is used to stop symlink loops.
func (w *walker) walk(ctx context.Context, src, dst, rel string, info fs.FileInfo, linkKind domain.EntryKind, ancestors []fs.FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	op := domain.CreateDirectory(src, dst, domain.NewMetadata(info))
	op.SourceKind = linkKind
	w.plan.Add(op)
	w.planner.report(*w.plan)

	entries, err := w.planner.FS.ReadDir(src)
	if err != nil {
		w.planner.Logger.Warnf("Cannot read %s: %v", src, err)
		w.plan.Add(domain.Fail(src, dst, terrors.Errorf("read directory %s: %w", src, err)))
		return nil
	}

	ancestors = append(ancestors[:len(ancestors):len(ancestors)], info)
	for _, entry := range entries {
		name := entry.Name()
		childSrc := filepath.Join(src, name)
		childDst := filepath.Join(dst, name)
		childRel := path.Join(rel, name)

		if w.excluded(childRel) {
			w.plan.Add(domain.Skip(childSrc, childDst, reasonExcluded))
			continue
		}

		childLink := domain.KindOf(entry.Mode())
		childInfo := entry
		if childLink == domain.KindSymlink {
			resolved, err := w.planner.FS.Stat(childSrc)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				w.plan.Add(domain.Skip(childSrc, childDst, reasonDangling))
				continue
			case errors.Is(err, syscall.ELOOP):
				w.plan.Add(domain.Skip(childSrc, childDst, reasonLoop))
				continue
			case err != nil:
				w.plan.Add(domain.Fail(childSrc, childDst, terrors.Errorf("resolve symlink %s: %w", childSrc, err)))
				continue
			}
			childInfo = resolved
		}

		switch domain.KindOf(childInfo.Mode()) {
		case domain.KindDirectory:
			if w.loops(childInfo, ancestors) {
				w.plan.Add(domain.Skip(childSrc, childDst, reasonLoop))
				continue
			}
			if err := w.walk(ctx, childSrc, childDst, childRel, childInfo, childLink, ancestors); err != nil {
				return err
			}
		case domain.KindRegularFile:
			op := domain.CopyFile(childSrc, childDst, domain.NewMetadata(childInfo))
			op.SourceKind = childLink
			w.plan.Add(op)
			w.planner.report(*w.plan)
		default:
			w.plan.Add(domain.Skip(childSrc, childDst, reasonUnsupported))
		}
	}
	return nil
}

func (w *walker) loops(info fs.FileInfo, ancestors []fs.FileInfo) bool {
	for _, a := range ancestors {
		if w.planner.FS.SameFile(info, a) {
			return true
		}
	}
	return false
}

// excluded matches the relative path and the base name, so "*.tmp" excludes
// temp files at any depth.
func (w *walker) excluded(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range w.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
