package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fileset/internal/catalog"
	"fileset/internal/config"
	"fileset/internal/container"
	"fileset/internal/datfile"
	"fileset/internal/logging"
	"fileset/internal/staging"
)

type AddCatalogRequest struct {
	Session *Session
	Path    string
	Dialect datfile.Dialect
	Root    string
}

type AddCatalogResult struct {
	Root    string
	Sources []string
	Load    datfile.Result
}

// AddCatalog loads one catalog file, or every member of an archived one,
// under a single transaction. The collection root is made absolute and
// created when missing.
func AddCatalog(ctx context.Context, req AddCatalogRequest) (AddCatalogResult, error) {
	if req.Session == nil {
		return AddCatalogResult{}, errors.New("session is required")
	}
	if strings.TrimSpace(req.Root) == "" {
		return AddCatalogResult{}, errors.New("collection root is required")
	}
	root, err := ResolveRoot(req.Root)
	if err != nil {
		return AddCatalogResult{}, err
	}
	info, err := os.Stat(req.Path)
	if err != nil {
		return AddCatalogResult{}, fmt.Errorf("catalog file: %w", err)
	}
	if info.IsDir() {
		return AddCatalogResult{}, fmt.Errorf("catalog file %s is a directory", req.Path)
	}

	cfg := req.Session.Config
	logger := logging.WithContext(ctx, logging.NewComponentLogger(req.Session.Logger, "add"))

	sources, cleanup, err := catalogSources(ctx, cfg, req.Session, req.Path, info)
	if err != nil {
		return AddCatalogResult{}, err
	}
	defer cleanup()

	loader := datfile.NewLoader(req.Session.Logger, cfg.Catalog.Encoding)
	var total datfile.Result
	err = req.Session.Store.Load(ctx, func(w catalog.Writer) error {
		for _, source := range sources {
			res, err := loader.Load(ctx, w, datfile.Request{Path: source, Dialect: req.Dialect, Root: root})
			if err != nil {
				return err
			}
			total.Collections = append(total.Collections, res.Collections...)
			total.Sets += res.Sets
			total.Files += res.Files
			total.Skipped += res.Skipped
		}
		return nil
	})
	if err != nil {
		return AddCatalogResult{}, err
	}

	logger.Info("catalog added",
		logging.String(logging.FieldPath, req.Path),
		logging.String("root", root),
		logging.Int("collections", len(total.Collections)),
		logging.Int("files", total.Files),
		logging.Int("skipped", total.Skipped),
	)
	return AddCatalogResult{Root: root, Sources: sources, Load: total}, nil
}

// catalogSources returns the files to parse for path: the path itself, or
// the extracted members when it is an archive.
func catalogSources(ctx context.Context, cfg *config.Config, session *Session, path string, info os.FileInfo) ([]string, func(), error) {
	noop := func() {}
	opener := container.NewOpener(cfg.Scan.Archives, session.Logger)
	c, err := opener.Open(path, info)
	if err != nil {
		return nil, noop, err
	}
	defer c.Close()
	if !container.IsArchive(c) {
		return []string{path}, noop, nil
	}

	staging.CleanStale(ctx, cfg.Paths.ScratchDir, staging.DefaultMaxAge, session.Logger)
	dir, err := staging.NewDir(cfg.Paths.ScratchDir)
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	sources, err := datfile.ExtractMembers(ctx, c, dir)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	if len(sources) == 0 {
		cleanup()
		return nil, noop, fmt.Errorf("archive %s contains no catalog files", path)
	}
	return sources, cleanup, nil
}

// ResolveRoot makes root absolute and creates it.
func ResolveRoot(root string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(root))
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create root %s: %w", abs, err)
	}
	return abs, nil
}

type ListResult struct {
	Collections []catalog.Summary
	Total       catalog.Summary
}

// ListCollections summarizes every collection and the catalog as a whole.
func ListCollections(ctx context.Context, store *catalog.Store) (ListResult, error) {
	if store == nil {
		return ListResult{}, errors.New("store is required")
	}
	summaries, err := store.Summarize(ctx)
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Collections: summaries, Total: catalog.Summary{Name: "total"}}
	for _, s := range summaries {
		result.Total.Sets += s.Sets
		result.Total.Files += s.Files
		result.Total.Found += s.Found
		result.Total.Bytes += s.Bytes
	}
	return result, nil
}
