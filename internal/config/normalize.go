package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(databaseEnvOverride); ok && strings.TrimSpace(value) != "" {
		c.Paths.Database = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = defaultDatabasePath
	}
	var err error
	if c.Paths.Database, err = expandPath(strings.TrimSpace(c.Paths.Database)); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ScratchDir, err = expandPath(strings.TrimSpace(c.Paths.ScratchDir)); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	encoding := strings.ToLower(strings.TrimSpace(c.Catalog.Encoding))
	switch encoding {
	case "", "utf8", "utf-8":
		encoding = "utf-8"
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		encoding = "latin1"
	case "cp1252", "windows-1252":
		encoding = "windows-1252"
	}
	c.Catalog.Encoding = encoding

	c.Catalog.DefaultDialect = strings.ToLower(strings.TrimSpace(c.Catalog.DefaultDialect))
	switch c.Catalog.DefaultDialect {
	case "":
		c.Catalog.DefaultDialect = defaultDialect
	case "csv":
		c.Catalog.DefaultDialect = "delimited"
	case "cmpro", "clrmamepro":
		c.Catalog.DefaultDialect = "block"
	}
}

// normalizeScan lowercases, deduplicates, and reorders archive formats into probe order.
func (c *Config) normalizeScan() {
	if c.Scan.Archives == nil {
		c.Scan.Archives = append([]string(nil), ArchiveFormats...)
		return
	}
	requested := make(map[string]struct{}, len(c.Scan.Archives))
	var unknown []string
	for _, name := range c.Scan.Archives {
		normalized := strings.ToLower(strings.TrimSpace(name))
		switch normalized {
		case "":
			continue
		case "sevenzip", "7zip":
			normalized = archiveFormatSevenZip
		}
		if _, seen := requested[normalized]; seen {
			continue
		}
		requested[normalized] = struct{}{}
		if !isArchiveFormat(normalized) {
			unknown = append(unknown, normalized)
		}
	}
	ordered := make([]string, 0, len(requested))
	for _, format := range ArchiveFormats {
		if _, ok := requested[format]; ok {
			ordered = append(ordered, format)
		}
	}
	// Unknown names are retained so Validate can report them.
	c.Scan.Archives = append(ordered, unknown...)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
}

func isArchiveFormat(name string) bool {
	for _, format := range ArchiveFormats {
		if format == name {
			return true
		}
	}
	return false
}
