package scan

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"

	"fileset/internal/catalog"
	"fileset/internal/container"
	"fileset/internal/faults"
)

// Index is the part of the catalog the walker needs.
type Index interface {
	LookupByFingerprint(ctx context.Context, fp catalog.Fingerprint) (catalog.Match, error)
	MarkFound(ctx context.Context, id int64) error
}

// Matcher fingerprints entries and looks them up.
type Matcher struct {
	index Index
}

// NewMatcher returns a Matcher backed by index.
func NewMatcher(index Index) *Matcher {
	return &Matcher{index: index}
}

// Fingerprint returns the size and CRC32 of e. A CRC recorded by the
// container is trusted; otherwise the content is streamed through crc32.
// Read failures are marked faults.ErrUnreadable.
func Fingerprint(e container.Entry) (catalog.Fingerprint, error) {
	if crc, ok := e.CRC32(); ok {
		return catalog.Fingerprint{Size: e.Size(), CRC32: crc}, nil
	}
	rc, err := e.Open()
	if err != nil {
		return catalog.Fingerprint{}, faults.Wrap(faults.ErrUnreadable, "scan", "open", e.Path(), err)
	}
	defer rc.Close()

	h := crc32.NewIEEE()
	n, err := io.Copy(h, rc)
	if err != nil {
		return catalog.Fingerprint{}, faults.Wrap(faults.ErrUnreadable, "scan", "read", e.Path(), err)
	}
	if n != e.Size() && e.Size() > 0 {
		return catalog.Fingerprint{}, faults.Wrap(faults.ErrUnreadable, "scan", "read", e.Path(),
			fmt.Errorf("read %d bytes, expected %d", n, e.Size()))
	}
	return catalog.Fingerprint{Size: n, CRC32: h.Sum32()}, nil
}

// Match fingerprints e and classifies it against the catalog. Lookup
// failures keep their faults.ErrIndex marker.
func (m *Matcher) Match(ctx context.Context, e container.Entry) (catalog.Fingerprint, catalog.Match, error) {
	fp, err := Fingerprint(e)
	if err != nil {
		return catalog.Fingerprint{}, catalog.Match{}, err
	}
	match, err := m.index.LookupByFingerprint(ctx, fp)
	if err != nil {
		return fp, catalog.Match{}, err
	}
	return fp, match, nil
}

// MarkFound flags a matched record.
func (m *Matcher) MarkFound(ctx context.Context, id int64) error {
	return m.index.MarkFound(ctx, id)
}
