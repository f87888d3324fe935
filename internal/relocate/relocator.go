package relocate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"fileset/internal/catalog"
	"fileset/internal/container"
	"fileset/internal/faults"
	"fileset/internal/fileutil"
	"fileset/internal/logging"
)

// Policy selects how a matched file is placed.
type Policy struct {
	// Zip packs the file into root/collection.zip instead of placing it loose.
	Zip bool
	// Delete removes a local source after placement, or instead of it with OnlyDelete.
	Delete bool
	// OnlyDelete skips placement entirely.
	OnlyDelete bool
}

// Outcome describes what Relocate did with a source.
type Outcome int

const (
	// OutcomePlaced means the file now exists at its destination.
	OutcomePlaced Outcome = iota
	// OutcomeInPlace means the source already was the destination.
	OutcomeInPlace
	// OutcomeDeleted means no placement happened and the source was removed.
	OutcomeDeleted
	// OutcomeKept means no placement happened and the source was left alone.
	OutcomeKept
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlaced:
		return "placed"
	case OutcomeInPlace:
		return "in-place"
	case OutcomeDeleted:
		return "deleted"
	default:
		return "kept"
	}
}

// Result reports a relocation.
type Result struct {
	Outcome     Outcome
	Destination string
}

// Index is the part of the catalog the relocator needs.
type Index interface {
	Placement(ctx context.Context, fileID int64) (catalog.Placement, error)
	MarkFound(ctx context.Context, id int64) error
}

// Relocator places matched entries at their canonical destination.
type Relocator struct {
	index  Index
	logger *slog.Logger
}

// New returns a Relocator backed by index.
func New(index Index, logger *slog.Logger) *Relocator {
	return &Relocator{index: index, logger: logging.NewComponentLogger(logger, "relocate")}
}

// Relocate places src as catalog record id under policy. Placement problems
// are returned marked with faults.ErrRelocation; catalog failures keep their
// faults.ErrIndex marker and must stop the caller.
func (r *Relocator) Relocate(ctx context.Context, src container.Entry, id int64, policy Policy) (Result, error) {
	placement, err := r.index.Placement(ctx, id)
	if err != nil {
		return Result{}, err
	}
	target, err := Destination(placement)
	if err != nil {
		return Result{}, err
	}
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldPath, src.Path()),
		logging.Int64("file_id", id),
	)

	if dest, ok := inPlace(src, target, policy); ok {
		if err := r.index.MarkFound(ctx, id); err != nil {
			return Result{}, err
		}
		logger.Debug("file already in place", logging.String("destination", dest))
		return Result{Outcome: OutcomeInPlace, Destination: dest}, nil
	}

	// A found record is only a duplicate while its canonical copy exists;
	// search marks records found without placing anything.
	duplicate := placement.Found && canonicalCopyExists(target)
	if duplicate {
		policy.OnlyDelete = true
	}
	local, isLocal := src.(container.LocalFile)

	if policy.OnlyDelete {
		if !policy.Delete || !isLocal {
			return Result{Outcome: OutcomeKept}, nil
		}
		if err := os.Remove(local.LocalPath()); err != nil {
			return Result{}, faults.Wrap(faults.ErrRelocation, "relocate", "delete duplicate", local.LocalPath(), err)
		}
		logger.Info("duplicate removed", logging.Bool("canonical_copy", duplicate))
		return Result{Outcome: OutcomeDeleted}, nil
	}

	var dest string
	if policy.Zip {
		dest, err = r.packZip(src, target)
	} else {
		dest, err = r.placeLoose(src, target, policy.Delete)
	}
	if err != nil {
		return Result{}, err
	}

	if policy.Zip && policy.Delete && isLocal {
		if err := os.Remove(local.LocalPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "source not removed after packing", "relocation_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "source file left beside its archived copy"),
			)
		}
	}

	if err := r.index.MarkFound(ctx, id); err != nil {
		return Result{}, err
	}
	logger.Info("file relocated",
		logging.String("destination", dest),
		logging.Bool("zip", policy.Zip),
		logging.Bool("delete", policy.Delete),
	)
	return Result{Outcome: OutcomePlaced, Destination: dest}, nil
}

func (r *Relocator) placeLoose(src container.Entry, target Target, remove bool) (string, error) {
	dest := target.Path()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", faults.Wrap(faults.ErrRelocation, "relocate", "create directory", filepath.Dir(dest), err)
	}

	if local, ok := src.(container.LocalFile); ok {
		var err error
		if remove {
			err = fileutil.MoveFile(local.LocalPath(), dest)
		} else {
			err = fileutil.CopyFile(local.LocalPath(), dest)
		}
		if err != nil {
			return "", faults.Wrap(faults.ErrRelocation, "relocate", "place", fmt.Sprintf("%s -> %s", local.LocalPath(), dest), err)
		}
		return dest, nil
	}

	rc, err := src.Open()
	if err != nil {
		return "", faults.Wrap(faults.ErrRelocation, "relocate", "open member", src.Path(), err)
	}
	defer rc.Close()
	if err := fileutil.WriteStream(dest, rc, src.Mode()); err != nil {
		return "", faults.Wrap(faults.ErrRelocation, "relocate", "extract", fmt.Sprintf("%s -> %s", src.Path(), dest), err)
	}
	return dest, nil
}

func (r *Relocator) packZip(src container.Entry, target Target) (string, error) {
	archive := target.Archive()
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return "", faults.Wrap(faults.ErrRelocation, "relocate", "create directory", filepath.Dir(archive), err)
	}
	rc, err := src.Open()
	if err != nil {
		return "", faults.Wrap(faults.ErrRelocation, "relocate", "open source", src.Path(), err)
	}
	defer rc.Close()

	member := target.Member()
	if err := appendStored(archive, member, rc, src.Mode()); err != nil {
		return "", faults.Wrap(faults.ErrRelocation, "relocate", "zip append", fmt.Sprintf("%s -> %s", src.Path(), archive), err)
	}
	return archive + "/" + member, nil
}

// inPlace reports whether src already sits at its destination: the loose
// path itself, or the same member of the collection zip.
func inPlace(src container.Entry, target Target, policy Policy) (string, bool) {
	if policy.Zip {
		dest := target.Archive() + "/" + target.Member()
		if src.Kind() == container.KindZip && src.Path() == dest {
			return dest, true
		}
		return "", false
	}
	local, ok := src.(container.LocalFile)
	if !ok {
		return "", false
	}
	dest := target.Path()
	if samePath(local.LocalPath(), dest) {
		return dest, true
	}
	return "", false
}

// canonicalCopyExists reports whether the record is present at its loose
// destination or as a member of the collection zip.
func canonicalCopyExists(target Target) bool {
	if info, err := os.Stat(target.Path()); err == nil && info.Mode().IsRegular() {
		return true
	}
	ok, err := hasMember(target.Archive(), target.Member())
	return err == nil && ok
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}
