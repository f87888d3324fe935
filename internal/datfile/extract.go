package datfile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fileset/internal/container"
	"fileset/internal/faults"
	"fileset/internal/fileutil"
)

// ExtractMembers writes every member of an archived catalog into dir and
// returns the written paths in archive order. Members are flattened to their
// base names; repeated names get a numeric suffix before the extension.
func ExtractMembers(ctx context.Context, archive container.Container, dir string) ([]string, error) {
	used := map[string]int{}
	var paths []string
	err := archive.Walk(ctx, func(e container.Entry) error {
		name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(e.Name(), `\`, "/")))
		if name == "." || name == string(filepath.Separator) || name == "" {
			return nil
		}
		if n := used[name]; n > 0 {
			ext := filepath.Ext(name)
			used[name] = n + 1
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
		} else {
			used[name] = 1
		}
		target := filepath.Join(dir, name)

		rc, err := e.Open()
		if err != nil {
			return faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "extract", e.Path(), err))
		}
		defer rc.Close()
		if err := fileutil.WriteStream(target, rc, 0o644); err != nil {
			return faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "extract", e.Path(), err))
		}
		paths = append(paths, target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
