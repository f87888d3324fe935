package container

import (
	"context"
	"io"
	"io/fs"

	"github.com/bodgit/sevenzip"
)

// SevenZipArchive reads a 7z file. Sizes and CRCs come from the archive headers.
type SevenZipArchive struct {
	path   string
	reader *sevenzip.ReadCloser
}

// OpenSevenZip opens path as a 7z archive.
func OpenSevenZip(path string) (*SevenZipArchive, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &SevenZipArchive{path: path, reader: r}, nil
}

func (s *SevenZipArchive) Kind() Kind   { return KindSevenZip }
func (s *SevenZipArchive) Path() string { return s.path }

func (s *SevenZipArchive) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}

// Walk yields every non-directory member in header order.
func (s *SevenZipArchive) Walk(ctx context.Context, fn func(Entry) error) error {
	for _, f := range s.reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if err := fn(&sevenZipEntry{archive: s.path, file: f}); err != nil {
			return err
		}
	}
	return nil
}

type sevenZipEntry struct {
	archive string
	file    *sevenzip.File
}

func (e *sevenZipEntry) Name() string      { return e.file.Name }
func (e *sevenZipEntry) Path() string      { return memberPath(e.archive, e.file.Name) }
func (e *sevenZipEntry) Size() int64       { return int64(e.file.UncompressedSize) }
func (e *sevenZipEntry) Mode() fs.FileMode { return memberMode(e.file.FileInfo().Mode()) }
func (e *sevenZipEntry) Kind() Kind        { return KindSevenZip }

// CRC32 treats a zero checksum on a non-empty member as absent; 7z allows
// members without a stored digest.
func (e *sevenZipEntry) CRC32() (uint32, bool) {
	if e.file.CRC32 == 0 && e.file.UncompressedSize > 0 {
		return 0, false
	}
	return e.file.CRC32, true
}

func (e *sevenZipEntry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}
