package container

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
)

// ErrConsumed is yielded when a Directory's children are iterated twice.
var ErrConsumed = errors.New("directory iteration already consumed")

const readDirBatch = 256

// Directory lazily enumerates the children of a filesystem directory.
type Directory struct {
	path     string
	consumed bool
}

// OpenDirectory returns a Directory for path. The directory is not read until
// Children is ranged over.
func OpenDirectory(path string) *Directory {
	return &Directory{path: path}
}

func (d *Directory) Path() string { return d.path }

func (d *Directory) Kind() Kind { return KindDirectory }

// Children yields directory entries in the order the OS returns them, reading
// in batches. The sequence can be ranged over once; a read error is yielded
// with a nil entry and ends the sequence.
func (d *Directory) Children() iter.Seq2[fs.DirEntry, error] {
	return func(yield func(fs.DirEntry, error) bool) {
		if d.consumed {
			yield(nil, ErrConsumed)
			return
		}
		d.consumed = true

		f, err := os.Open(d.path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		for {
			batch, err := f.ReadDir(readDirBatch)
			for _, entry := range batch {
				if !yield(entry, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}
