package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/nwaples/rardecode/v2"
)

var (
	// ErrEntryExpired is returned when a RAR entry is opened after its Walk callback returned.
	ErrEntryExpired = errors.New("rar entry no longer current")
	// ErrRewalk is returned when a RAR archive is walked a second time.
	ErrRewalk = errors.New("rar archive supports a single forward walk")
)

// RarArchive reads a RAR file sequentially. Members can only be read in
// archive order, so each entry is valid only inside its Walk callback and the
// archive can be walked once. RAR headers carry no CRC32 usable here, so
// fingerprints are always computed from content.
type RarArchive struct {
	path   string
	reader *rardecode.ReadCloser
	walked bool
}

// OpenRar opens path as a RAR archive.
func OpenRar(path string) (*RarArchive, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &RarArchive{path: path, reader: r}, nil
}

func (a *RarArchive) Kind() Kind   { return KindRar }
func (a *RarArchive) Path() string { return a.path }

func (a *RarArchive) Close() error {
	if a.reader == nil {
		return nil
	}
	return a.reader.Close()
}

// Walk yields every non-directory member in archive order.
func (a *RarArchive) Walk(ctx context.Context, fn func(Entry) error) error {
	if a.walked {
		return ErrRewalk
	}
	a.walked = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := a.reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if header.IsDir {
			continue
		}
		entry := &rarEntry{archive: a.path, header: header, source: a.reader, current: true}
		err = fn(entry)
		entry.release()
		if err != nil {
			return err
		}
	}
}

type rarEntry struct {
	archive string
	header  *rardecode.FileHeader
	source  io.Reader
	current bool
	loaded  bool
	data    []byte
	readErr error
}

func (e *rarEntry) Name() string          { return e.header.Name }
func (e *rarEntry) Path() string          { return memberPath(e.archive, e.header.Name) }
func (e *rarEntry) Size() int64           { return e.header.UnPackedSize }
func (e *rarEntry) Mode() fs.FileMode     { return memberMode(e.header.Mode()) }
func (e *rarEntry) Kind() Kind            { return KindRar }
func (e *rarEntry) CRC32() (uint32, bool) { return 0, false }

// Open buffers the member on first call; later calls within the same
// callback replay the buffer.
func (e *rarEntry) Open() (io.ReadCloser, error) {
	if !e.current {
		return nil, ErrEntryExpired
	}
	if !e.loaded {
		e.data, e.readErr = io.ReadAll(e.source)
		e.loaded = true
	}
	if e.readErr != nil {
		return nil, e.readErr
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func (e *rarEntry) release() {
	e.current = false
	e.data = nil
	e.source = nil
}
