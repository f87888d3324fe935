package container

import (
	"io/fs"
	"log/slog"
	"os"

	"fileset/internal/faults"
	"fileset/internal/logging"
)

// Format names accepted by NewOpener.
const (
	FormatZip      = "zip"
	FormatRar      = "rar"
	FormatSevenZip = "7z"
)

type probe struct {
	format string
	open   func(string) (Container, error)
}

// probes are tried in this fixed order regardless of configuration.
var probes = []probe{
	{FormatZip, func(p string) (Container, error) { return OpenZip(p) }},
	{FormatRar, func(p string) (Container, error) { return OpenRar(p) }},
	{FormatSevenZip, func(p string) (Container, error) { return OpenSevenZip(p) }},
}

// Opener classifies non-directory paths into containers.
type Opener struct {
	enabled map[string]bool
	logger  *slog.Logger
}

// NewOpener returns an Opener that tries the listed archive formats. An empty
// list disables archive handling so every path opens as a RegularFile.
func NewOpener(formats []string, logger *slog.Logger) *Opener {
	enabled := make(map[string]bool, len(formats))
	for _, format := range formats {
		enabled[format] = true
	}
	return &Opener{enabled: enabled, logger: logging.NewComponentLogger(logger, "container")}
}

// Open returns the first archive reader that accepts path, falling back to a
// RegularFile. info may be nil, in which case path is stat'ed.
func (o *Opener) Open(path string, info fs.FileInfo) (Container, error) {
	if info == nil {
		var err error
		if info, err = os.Stat(path); err != nil {
			return nil, faults.Wrap(faults.ErrContainerOpen, "container", "stat", path, err)
		}
	}
	if info.Size() > 0 {
		for _, p := range probes {
			if !o.enabled[p.format] {
				continue
			}
			c, err := p.open(path)
			if err == nil {
				return c, nil
			}
			o.logger.Debug("not an archive of this format",
				logging.String(logging.FieldPath, path),
				logging.String("format", p.format),
				logging.Error(faults.Wrap(faults.ErrContainerOpen, "container", "open "+p.format, "", err)),
			)
		}
	}
	return NewRegularFile(path, info), nil
}

// IsArchive reports whether c is an archive rather than a plain file.
func IsArchive(c Container) bool {
	return c != nil && c.Kind() != KindFile && c.Kind() != KindDirectory
}
