package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fileset/internal/container"
	"fileset/internal/faults"
	"fileset/internal/logging"
	"fileset/internal/relocate"
	"fileset/internal/scan"
)

// ScanRequest is shared by Search, Verify, and Hunt.
type ScanRequest struct {
	Session *Session
	// Path is the tree to walk. Verify ignores it and walks collection roots.
	Path string
	// Flags adds modifier bits (verbose, zip, delete, only-delete) to the
	// workflow's base mode.
	Flags    scan.Mode
	Observer scan.Observer
	// OnTotal receives the leaf count from Search's counting pass.
	OnTotal func(total int)
}

type SearchResult struct {
	Total  int
	Result scan.Result
}

const modifierBits = scan.ModeVerbose | scan.ModeZip | scan.ModeDelete | scan.ModeOnlyDelete

func (r ScanRequest) path() string {
	if strings.TrimSpace(r.Path) == "" {
		return "."
	}
	return r.Path
}

func newWalker(req ScanRequest, mode scan.Mode, observer scan.Observer) (*scan.Walker, error) {
	s := req.Session
	return scan.NewWalker(scan.Options{
		Mode:      mode,
		Opener:    container.NewOpener(s.Config.Scan.Archives, s.Logger),
		Index:     s.Store,
		Relocator: relocate.New(s.Store, s.Logger),
		Observer:  observer,
		Logger:    s.Logger,
	})
}

// Search counts the leaves under the path, then fingerprints each one and
// marks single matches found.
func Search(ctx context.Context, req ScanRequest) (SearchResult, error) {
	if req.Session == nil {
		return SearchResult{}, errors.New("session is required")
	}
	flags := req.Flags & scan.ModeVerbose
	ctx = logging.WithMode(ctx, "search")

	counter, err := newWalker(req, scan.ModeCount|flags, nil)
	if err != nil {
		return SearchResult{}, err
	}
	counted, err := counter.Walk(ctx, req.path())
	if err != nil {
		return SearchResult{}, err
	}
	if req.OnTotal != nil {
		req.OnTotal(counted.Visited)
	}

	searcher, err := newWalker(req, scan.ModeSearch|flags, req.Observer)
	if err != nil {
		return SearchResult{}, err
	}
	res, err := searcher.Walk(ctx, req.path())
	if err != nil {
		logAborted(ctx, req.Session, "search aborted", err)
		return SearchResult{Total: counted.Visited, Result: res}, err
	}
	logSummary(ctx, req.Session, "search complete", res)
	return SearchResult{Total: counted.Visited, Result: res}, nil
}

// Hunt relocates every single match under the path into its collection.
func Hunt(ctx context.Context, req ScanRequest) (scan.Result, error) {
	if req.Session == nil {
		return scan.Result{}, errors.New("session is required")
	}
	mode := scan.ModeHunt | (req.Flags & modifierBits)
	ctx = logging.WithMode(ctx, "hunt")

	walker, err := newWalker(req, mode, req.Observer)
	if err != nil {
		return scan.Result{}, err
	}
	res, err := walker.Walk(ctx, req.path())
	if err != nil {
		logAborted(ctx, req.Session, "hunt aborted", err)
		return res, err
	}
	logSummary(ctx, req.Session, "hunt complete", res)
	return res, nil
}

type VerifiedCollection struct {
	Name    string
	Path    string
	Missing bool
	Result  scan.Result
}

type VerifyResult struct {
	Collections []VerifiedCollection
	Total       scan.Result
}

// Verify clears every found flag and rescans each collection where it
// should live: root/name, or root/name.zip when the directory is absent.
func Verify(ctx context.Context, req ScanRequest) (VerifyResult, error) {
	if req.Session == nil {
		return VerifyResult{}, errors.New("session is required")
	}
	store := req.Session.Store
	ctx = logging.WithMode(ctx, "verify")
	logger := logging.NewComponentLogger(req.Session.Logger, "verify")

	if err := store.ResetFound(ctx); err != nil {
		return VerifyResult{}, err
	}
	collections, err := store.ListCollections(ctx)
	if err != nil {
		return VerifyResult{}, err
	}

	walker, err := newWalker(req, scan.ModeVerify|(req.Flags&scan.ModeVerbose), req.Observer)
	if err != nil {
		return VerifyResult{}, err
	}

	var result VerifyResult
	for _, c := range collections {
		cctx := logging.WithCollection(ctx, c.Name)
		vc := VerifiedCollection{Name: c.Name}
		dir := relocate.CollectionDir(c.Root, c.Name)
		vc.Path = locateCollection(dir)
		if vc.Path == "" {
			vc.Missing = true
			logging.WarnWithContext(logging.WithContext(cctx, logger), "collection not on disk", "collection_missing",
				logging.String(logging.FieldPath, dir),
				logging.String(logging.FieldImpact, "every record in the collection stays not found"),
				logging.String(logging.FieldErrorHint, "run hunt to populate the collection"),
			)
			result.Collections = append(result.Collections, vc)
			continue
		}
		res, err := walker.Walk(cctx, vc.Path)
		if err != nil {
			logAborted(cctx, req.Session, "verify aborted", err)
			return result, fmt.Errorf("verify %s: %w", c.Name, err)
		}
		vc.Result = res
		result.Collections = append(result.Collections, vc)
		addResult(&result.Total, res)
	}
	logSummary(ctx, req.Session, "verify complete", result.Total)
	return result, nil
}

func locateCollection(dir string) string {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	archive := strings.TrimRight(dir, "/") + ".zip"
	if info, err := os.Stat(archive); err == nil && info.Mode().IsRegular() {
		return archive
	}
	return ""
}

func addResult(total *scan.Result, res scan.Result) {
	total.Visited += res.Visited
	total.Matched += res.Matched
	total.Unknown += res.Unknown
	total.Ambiguous += res.Ambiguous
	total.Relocated += res.Relocated
	total.Deleted += res.Deleted
	total.Failed += res.Failed
	total.Unreadable += res.Unreadable
}

// logAborted records a walk stopped by a fatal error. Cancellation is not logged.
func logAborted(ctx context.Context, s *Session, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.ErrorWithContext(logging.WithContext(ctx, s.Logger), msg, faults.EventType(err),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "fix the reported error and rerun"),
	)
}

func logSummary(ctx context.Context, s *Session, msg string, res scan.Result) {
	logging.WithContext(ctx, s.Logger).Info(msg,
		logging.Int("visited", res.Visited),
		logging.Int("matched", res.Matched),
		logging.Int("unknown", res.Unknown),
		logging.Int("ambiguous", res.Ambiguous),
		logging.Int("relocated", res.Relocated),
		logging.Int("deleted", res.Deleted),
		logging.Int("failed", res.Failed),
		logging.Int("unreadable", res.Unreadable),
	)
}
