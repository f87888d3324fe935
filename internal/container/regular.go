package container

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// RegularFile is a plain file on disk. It is both a Container holding one
// leaf and that leaf.
type RegularFile struct {
	path string
	size int64
	mode fs.FileMode
}

// NewRegularFile builds a RegularFile from an already-obtained FileInfo.
func NewRegularFile(path string, info fs.FileInfo) *RegularFile {
	return &RegularFile{path: path, size: info.Size(), mode: info.Mode()}
}

// OpenRegularFile stats path and returns it as a RegularFile.
func OpenRegularFile(path string) (*RegularFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return NewRegularFile(path, info), nil
}

func (f *RegularFile) Name() string          { return filepath.Base(f.path) }
func (f *RegularFile) Path() string          { return f.path }
func (f *RegularFile) LocalPath() string     { return f.path }
func (f *RegularFile) Size() int64           { return f.size }
func (f *RegularFile) Mode() fs.FileMode     { return f.mode }
func (f *RegularFile) Kind() Kind            { return KindFile }
func (f *RegularFile) CRC32() (uint32, bool) { return 0, false }
func (f *RegularFile) Close() error          { return nil }

func (f *RegularFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// Walk calls fn once with the file itself.
func (f *RegularFile) Walk(ctx context.Context, fn func(Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(f)
}
