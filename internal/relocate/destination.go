package relocate

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"fileset/internal/catalog"
	"fileset/internal/faults"
)

// Target is the canonical location of one catalog record.
type Target struct {
	// Dir is the collection directory: root/collection.
	Dir string
	// File is the set-relative name: set/file with surrounding slashes trimmed.
	File string
}

// Path returns the loose-file destination.
func (t Target) Path() string {
	return filepath.Join(t.Dir, filepath.FromSlash(t.File))
}

// Archive returns the zip the record is packed into under the zip policy.
func (t Target) Archive() string {
	return filepath.Clean(t.Dir) + ".zip"
}

// Member returns the member name used inside Archive.
func (t Target) Member() string {
	return path.Clean(filepath.ToSlash(t.File))
}

// Destination computes the canonical target for a placement. Names that
// would leave the collection directory are rejected.
func Destination(p catalog.Placement) (Target, error) {
	collection := strings.Trim(p.Collection, "/ ")
	if collection == "" {
		return Target{}, faults.Wrap(faults.ErrRelocation, "relocate", "destination",
			fmt.Sprintf("file %d has no collection", p.FileID), nil)
	}
	t := Target{
		Dir:  CollectionDir(p.Root, collection),
		File: strings.Trim(p.Set+"/"+p.File, "/ "),
	}
	if t.File == "" {
		return Target{}, faults.Wrap(faults.ErrRelocation, "relocate", "destination",
			fmt.Sprintf("file %d has an empty name", p.FileID), nil)
	}
	if !within(t.Dir, t.Path()) || strings.HasPrefix(t.Member(), "../") || t.Member() == ".." {
		return Target{}, faults.Wrap(faults.ErrRelocation, "relocate", "destination",
			fmt.Sprintf("%q escapes collection directory %q", t.File, t.Dir), nil)
	}
	if !within(filepath.Clean(p.Root), filepath.Clean(t.Dir)) {
		return Target{}, faults.Wrap(faults.ErrRelocation, "relocate", "destination",
			fmt.Sprintf("collection %q escapes root %q", collection, p.Root), nil)
	}
	return t, nil
}

// CollectionDir joins a collection root and name with surrounding slashes
// and spaces trimmed.
func CollectionDir(root, name string) string {
	return strings.TrimRight(root, "/ ") + "/" + strings.Trim(name, "/ ")
}

// within reports whether target is strictly below dir once both are cleaned.
func within(dir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
