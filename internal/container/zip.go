package container

import (
	"context"
	"io"
	"io/fs"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ZipArchive reads a zip file. Sizes and CRCs come from the central directory.
type ZipArchive struct {
	path   string
	reader *zip.ReadCloser
}

// OpenZip opens path as a zip archive.
func OpenZip(path string) (*ZipArchive, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &ZipArchive{path: path, reader: r}, nil
}

func (z *ZipArchive) Kind() Kind   { return KindZip }
func (z *ZipArchive) Path() string { return z.path }

func (z *ZipArchive) Close() error {
	if z.reader == nil {
		return nil
	}
	return z.reader.Close()
}

// Walk yields every non-directory member in central directory order.
func (z *ZipArchive) Walk(ctx context.Context, fn func(Entry) error) error {
	for _, f := range z.reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			continue
		}
		if err := fn(&zipEntry{archive: z.path, file: f}); err != nil {
			return err
		}
	}
	return nil
}

type zipEntry struct {
	archive string
	file    *zip.File
}

func (e *zipEntry) Name() string          { return e.file.Name }
func (e *zipEntry) Path() string          { return memberPath(e.archive, e.file.Name) }
func (e *zipEntry) Size() int64           { return int64(e.file.UncompressedSize64) }
func (e *zipEntry) Mode() fs.FileMode     { return memberMode(e.file.Mode()) }
func (e *zipEntry) Kind() Kind            { return KindZip }
func (e *zipEntry) CRC32() (uint32, bool) { return e.file.CRC32, true }

func (e *zipEntry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}
