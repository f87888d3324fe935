package datfile

import (
	"fmt"
	"strings"
)

// Dialect selects the catalog file grammar.
type Dialect string

const (
	DialectDelimited Dialect = "delimited"
	DialectBlock     Dialect = "block"
)

// ParseDialect accepts the canonical names plus the csv and cmpro aliases.
func ParseDialect(value string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "delimited", "csv":
		return DialectDelimited, nil
	case "block", "cmpro", "clrmamepro", "dat":
		return DialectBlock, nil
	default:
		return "", fmt.Errorf("unknown catalog dialect %q (use delimited or block)", value)
	}
}
