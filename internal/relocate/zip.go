package relocate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// hasMember reports whether archive contains member. A missing archive is
// not an error.
func hasMember(archive, member string) (bool, error) {
	zr, err := zip.OpenReader(archive)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == member {
			return true, nil
		}
	}
	return false, nil
}

// appendStored writes content into archive as an uncompressed member. The
// archive is rebuilt in a temporary file beside it and renamed over the
// original; an existing member with the same name is replaced.
func appendStored(archive, member string, content io.Reader, mode fs.FileMode) error {
	archiveMode := fs.FileMode(0o644)
	existing, err := zip.OpenReader(archive)
	switch {
	case err == nil:
		defer existing.Close()
		if info, statErr := os.Stat(archive); statErr == nil {
			archiveMode = info.Mode().Perm()
		}
	case errors.Is(err, fs.ErrNotExist):
		existing = nil
	default:
		return fmt.Errorf("open existing archive: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(archive), "."+filepath.Base(archive)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	if existing != nil {
		for _, f := range existing.File {
			if f.Name == member {
				continue
			}
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy member %s: %w", f.Name, err)
			}
		}
	}

	header := &zip.FileHeader{
		Name:     member,
		Method:   zip.Store,
		Modified: time.Now(),
	}
	if mode.Perm() == 0 {
		mode = 0o644
	}
	header.SetMode(mode.Perm())
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create member %s: %w", member, err)
	}
	if _, err := io.Copy(w, content); err != nil {
		return fmt.Errorf("write member %s: %w", member, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	if err := tmp.Chmod(archiveMode); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, archive); err != nil {
		return err
	}
	committed = true
	return nil
}
