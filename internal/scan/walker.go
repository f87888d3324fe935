package scan

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
	"fileset/internal/logging"
	"fileset/internal/relocate"
)

// Relocator places a matched entry. Implemented by relocate.Relocator.
type Relocator interface {
	Relocate(ctx context.Context, src container.Entry, id int64, policy relocate.Policy) (relocate.Result, error)
}

// Result counts what a walk did.
type Result struct {
	Visited    int
	Matched    int
	Unknown    int
	Ambiguous  int
	Relocated  int
	Deleted    int
	Failed     int
	Unreadable int
}

// Options configures a Walker.
type Options struct {
	Mode      Mode
	Opener    *container.Opener
	Index     Index
	Relocator Relocator
	Observer  Observer
	Logger    *slog.Logger
}

// Walker traverses a tree and reconciles each leaf with the catalog.
type Walker struct {
	mode      Mode
	opener    *container.Opener
	matcher   *Matcher
	relocator Relocator
	observer  Observer
	logger    *slog.Logger
}

// NewWalker builds a Walker. Index is required unless the mode only counts;
// Relocator is required for ModeHunt.
func NewWalker(opts Options) (*Walker, error) {
	if opts.Opener == nil {
		return nil, errors.New("scan: opener is required")
	}
	if opts.Mode.matches() && opts.Index == nil {
		return nil, errors.New("scan: index is required to match entries")
	}
	if opts.Mode.matches() && opts.Mode.Has(ModeHunt) && opts.Relocator == nil {
		return nil, errors.New("scan: relocator is required for hunt")
	}
	w := &Walker{
		mode:      opts.Mode,
		opener:    opts.Opener,
		relocator: opts.Relocator,
		observer:  opts.Observer,
		logger:    logging.NewComponentLogger(opts.Logger, "scan"),
	}
	if opts.Index != nil {
		w.matcher = NewMatcher(opts.Index)
	}
	return w, nil
}

type walkState struct {
	logger  *slog.Logger
	visited map[string]struct{}
	result  Result
}

// Walk visits every leaf under root. Only fatal errors are returned: index
// failures and cancellation. Everything else is logged, counted, and skipped.
func (w *Walker) Walk(ctx context.Context, root string) (Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("walk %s: %w", root, err)
	}

	state := &walkState{
		logger:  logging.WithContext(ctx, w.logger),
		visited: make(map[string]struct{}),
	}
	state.logger.Debug("walk started", logging.String(logging.FieldPath, abs), logging.String(logging.FieldMode, w.mode.String()))

	err = w.walkPath(ctx, state, abs, info)
	state.logger.Debug("walk finished",
		logging.String(logging.FieldPath, abs),
		logging.Int("visited", state.result.Visited),
		logging.Int("matched", state.result.Matched),
	)
	return state.result, err
}

func (w *Walker) walkPath(ctx context.Context, state *walkState, path string, info fs.FileInfo) error {
	if info.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			state.logger.Warn("dangling symlink skipped",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			return nil
		}
		target, err := os.Stat(resolved)
		if err != nil {
			state.logger.Warn("symlink target unreadable",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			return nil
		}
		path, info = resolved, target
	}

	switch {
	case info.IsDir():
		return w.walkDir(ctx, state, path)
	case info.Mode().IsRegular():
		return w.walkFile(ctx, state, path, info)
	default:
		state.logger.Debug("special file skipped",
			logging.String(logging.FieldPath, path),
			logging.String("type", info.Mode().Type().String()),
		)
		return nil
	}
}

func (w *Walker) walkDir(ctx context.Context, state *walkState, path string) error {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}
	if _, seen := state.visited[canonical]; seen {
		logging.WarnWithContext(state.logger, "directory already visited", "symlink_cycle",
			logging.String(logging.FieldPath, path),
			logging.String("canonical", canonical),
			logging.String(logging.FieldImpact, "directory skipped"),
		)
		return nil
	}
	state.visited[canonical] = struct{}{}

	dir := container.OpenDirectory(path)
	for child, err := range dir.Children() {
		if err != nil {
			logging.WarnWithContext(state.logger, "directory unreadable", "container_open_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "remaining entries skipped"),
			)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		childPath := filepath.Join(path, child.Name())
		info, err := os.Lstat(childPath)
		if err != nil {
			state.logger.Warn("entry vanished", logging.String(logging.FieldPath, childPath), logging.Error(err))
			continue
		}
		if err := w.walkPath(ctx, state, childPath, info); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkFile(ctx context.Context, state *walkState, path string, info fs.FileInfo) error {
	c, err := w.opener.Open(path, info)
	if err != nil {
		state.result.Visited++
		state.result.Unreadable++
		w.notify(state, Visit{Path: path, Kind: container.KindFile, Status: StatusUnreadable, Err: err})
		return nil
	}
	defer c.Close()

	err = c.Walk(ctx, func(e container.Entry) error {
		return w.visit(ctx, state, e)
	})
	if err == nil || faults.IsFatal(err) {
		return err
	}
	// A broken archive stops its own walk but not the traversal.
	logging.WarnWithContext(state.logger, "archive walk aborted", faults.EventType(err),
		logging.String(logging.FieldPath, path),
		logging.String("kind", c.Kind().String()),
		logging.Error(err),
		logging.String(logging.FieldImpact, "remaining archive members skipped"),
	)
	state.result.Failed++
	return nil
}

func (w *Walker) visit(ctx context.Context, state *walkState, e container.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state.result.Visited++
	v := Visit{Path: e.Path(), Kind: e.Kind()}
	if !w.mode.matches() {
		v.Status = StatusCounted
		w.notify(state, v)
		return nil
	}

	fp, match, err := w.matcher.Match(ctx, e)
	if err != nil {
		if faults.IsFatal(err) {
			return err
		}
		state.result.Unreadable++
		logging.WarnWithContext(state.logger, "entry unreadable", faults.EventType(err),
			logging.String(logging.FieldPath, e.Path()),
			logging.Error(err),
		)
		v.Status, v.Err = StatusUnreadable, err
		w.notify(state, v)
		return nil
	}

	switch match.Outcome {
	case catalog.OutcomeNone:
		state.result.Unknown++
		v.Status = StatusUnknown
	case catalog.OutcomeAmbiguous:
		state.result.Ambiguous++
		v.Status = StatusAmbiguous
		v.Err = faults.Wrap(faults.ErrAmbiguousMatch, "scan", "lookup",
			fmt.Sprintf("%s matches %d records", e.Path(), match.Count), nil)
		logging.WarnWithContext(state.logger, "ambiguous match", faults.EventType(v.Err),
			logging.String(logging.FieldPath, e.Path()),
			logging.Int64("size", fp.Size),
			logging.CRC("crc", fp.CRC32),
			logging.Int("records", match.Count),
			logging.String(logging.FieldImpact, "entry left untouched"),
		)
	case catalog.OutcomeOne:
		state.result.Matched++
		if err := w.handleMatch(ctx, state, e, match.ID, &v); err != nil {
			return err
		}
	}
	w.notify(state, v)
	return nil
}

func (w *Walker) handleMatch(ctx context.Context, state *walkState, e container.Entry, id int64, v *Visit) error {
	if !w.mode.Has(ModeHunt) {
		if err := w.matcher.MarkFound(ctx, id); err != nil {
			return err
		}
		v.Status = StatusFound
		return nil
	}

	res, err := w.relocator.Relocate(ctx, e, id, relocate.Policy{
		Zip:        w.mode.Has(ModeZip),
		Delete:     w.mode.Has(ModeDelete),
		OnlyDelete: w.mode.Has(ModeOnlyDelete),
	})
	if err != nil {
		if faults.IsFatal(err) {
			return err
		}
		state.result.Failed++
		v.Status, v.Err = StatusFailed, err
		logging.WarnWithContext(state.logger, "relocation failed", faults.EventType(err),
			logging.String(logging.FieldPath, e.Path()),
			logging.Int64("file_id", id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "entry left at its current location"),
			logging.String(logging.FieldErrorHint, "check destination permissions and free space"),
		)
		return nil
	}
	v.Destination = res.Destination
	switch res.Outcome {
	case relocate.OutcomePlaced:
		state.result.Relocated++
		v.Status = StatusRelocated
	case relocate.OutcomeInPlace:
		v.Status = StatusInPlace
	case relocate.OutcomeDeleted:
		state.result.Deleted++
		v.Status = StatusDeleted
	default:
		v.Status = StatusKept
	}
	return nil
}

func (w *Walker) notify(state *walkState, v Visit) {
	if w.observer != nil {
		w.observer.Visit(v, state.result.Visited)
	}
}
