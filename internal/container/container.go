package container

import (
	"context"
	"io"
	"io/fs"
)

// Kind identifies the container variant an entry came from.
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
	KindZip
	KindRar
	KindSevenZip
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindZip:
		return "zip"
	case KindRar:
		return "rar"
	case KindSevenZip:
		return "7z"
	default:
		return "file"
	}
}

// Label is the short prefix used in verbose traversal output.
func (k Kind) Label() string {
	switch k {
	case KindZip:
		return "ZFile"
	case KindRar:
		return "RFile"
	case KindSevenZip:
		return "7File"
	case KindDirectory:
		return "Dir"
	default:
		return "File"
	}
}

// Entry is one leaf: a regular file or an archive member.
type Entry interface {
	// Name is the base name for files and the full member name for archive members.
	Name() string
	// Path is a display path: the file path, or archive path joined with the member name.
	Path() string
	Size() int64
	Mode() fs.FileMode
	Kind() Kind
	// CRC32 returns the checksum recorded by the container, when it has one.
	CRC32() (uint32, bool)
	Open() (io.ReadCloser, error)
}

// LocalFile is an Entry backed by a file on disk that can be renamed or removed.
type LocalFile interface {
	Entry
	LocalPath() string
}

// Container yields its leaves in native order. RegularFile is a container of
// exactly one leaf: itself.
type Container interface {
	Kind() Kind
	Path() string
	Walk(ctx context.Context, fn func(Entry) error) error
	Close() error
}

func memberPath(archive, member string) string {
	return archive + "/" + member
}

func memberMode(mode fs.FileMode) fs.FileMode {
	perm := mode.Perm()
	if perm == 0 {
		return 0o644
	}
	return perm
}
