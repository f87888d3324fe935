package datfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fileset/internal/catalog"
	"fileset/internal/faults"
	"fileset/internal/logging"
)

const maxLineBytes = 4 << 20

// Request describes one catalog file to load.
type Request struct {
	Path    string
	Dialect Dialect
	// Root is the absolute directory matched files are relocated under.
	Root string
}

// Result counts what a load wrote.
type Result struct {
	Collections []string
	Sets        int
	Files       int
	Skipped     int
}

// Loader parses catalog files into a catalog.Writer.
type Loader struct {
	logger   *slog.Logger
	encoding string
}

// NewLoader returns a Loader that decodes catalog files from the given charset.
func NewLoader(logger *slog.Logger, encoding string) *Loader {
	return &Loader{logger: logging.NewComponentLogger(logger, "datfile"), encoding: encoding}
}

// Load parses req.Path with the requested dialect. Callers run it inside
// catalog.Store.Load so any returned error discards everything written.
func (l *Loader) Load(ctx context.Context, w catalog.Writer, req Request) (Result, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return Result{}, faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "open", req.Path, err))
	}
	defer f.Close()

	return l.LoadReader(ctx, w, f, req)
}

// LoadReader parses catalog content from r. req.Path names the source for
// collection naming and log lines.
func (l *Loader) LoadReader(ctx context.Context, w catalog.Writer, r io.Reader, req Request) (Result, error) {
	decoded, err := decodeReader(r, l.encoding)
	if err != nil {
		return Result{}, faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "decode", req.Path, err))
	}
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	logger := logging.WithContext(ctx, l.logger)
	var result Result
	switch req.Dialect {
	case DialectDelimited:
		err = l.loadDelimited(ctx, w, scanner, req, logger, &result)
	case DialectBlock:
		p := &blockParser{
			ctx:          ctx,
			w:            w,
			logger:       logger,
			scanner:      scanner,
			source:       req.Path,
			root:         req.Root,
			fallbackName: CollectionName(req.Path),
			result:       &result,
		}
		err = p.run()
	default:
		err = fmt.Errorf("unknown catalog dialect %q", req.Dialect)
	}
	if err != nil {
		return Result{}, err
	}

	logger.Info("catalog parsed",
		logging.String(logging.FieldPath, req.Path),
		logging.String("dialect", string(req.Dialect)),
		logging.Int("sets", result.Sets),
		logging.Int("files", result.Files),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (l *Loader) loadDelimited(ctx context.Context, w catalog.Writer, scanner *bufio.Scanner, req Request, logger *slog.Logger, result *Result) error {
	name := CollectionName(req.Path)
	collectionID, err := w.InsertCollection(ctx, catalog.Collection{Name: name, Root: req.Root})
	if err != nil {
		return err
	}
	result.Collections = append(result.Collections, name)

	var (
		lineNo     int
		currentSet string
		setID      int64
		haveSet    bool
	)
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := parseDelimitedLine(scanner.Text())
		if err != nil {
			result.Skipped++
			wrapped := faults.Wrap(faults.ErrCatalogParse, "datfile", "record", fmt.Sprintf("%s line %d", req.Path, lineNo), err)
			logging.WarnWithContext(logger, "catalog record skipped", faults.EventType(wrapped),
				logging.String(logging.FieldPath, req.Path),
				logging.Int("line", lineNo),
				logging.Error(wrapped),
				logging.String(logging.FieldImpact, "record not added to catalog"),
				logging.String(logging.FieldErrorHint, "expected name,size,crc,set[,comment]"),
			)
			continue
		}
		if rec == nil {
			continue
		}
		if !haveSet || rec.set != currentSet {
			setID, err = w.InsertSet(ctx, catalog.Set{CollectionID: collectionID, Name: rec.set})
			if err != nil {
				return err
			}
			currentSet, haveSet = rec.set, true
			result.Sets++
		}
		if _, err := w.InsertFile(ctx, catalog.FileRecord{
			SetID:   setID,
			Name:    rec.name,
			Size:    rec.size,
			CRC32:   rec.crc,
			Comment: rec.comment,
		}); err != nil {
			return err
		}
		result.Files++
	}
	if err := scanner.Err(); err != nil {
		return faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "read", req.Path, err))
	}
	return nil
}

// CollectionName derives a collection name from a catalog path: the base
// name with its final extension removed.
func CollectionName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
