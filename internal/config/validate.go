package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Database) == "" {
		return errors.New("paths.database must be set")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Encoding {
	case "utf-8", "latin1", "windows-1252":
	default:
		return fmt.Errorf("catalog.encoding %q unsupported (use utf-8, latin1, or windows-1252)", c.Catalog.Encoding)
	}
	switch c.Catalog.DefaultDialect {
	case "delimited", "block":
	default:
		return fmt.Errorf("catalog.default_dialect %q unsupported (use delimited or block)", c.Catalog.DefaultDialect)
	}
	return nil
}

func (c *Config) validateScan() error {
	for _, name := range c.Scan.Archives {
		if !isArchiveFormat(name) {
			return fmt.Errorf("scan.archives: unknown format %q (supported: %s)", name, strings.Join(ArchiveFormats, ", "))
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q unsupported", c.Logging.Level)
	}
	return nil
}
