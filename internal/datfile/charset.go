package datfile

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeReader wraps r so catalog bytes in the named charset are read as UTF-8.
// A UTF-8 byte order mark is dropped.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		enc = unicode.UTF8BOM
	case "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	default:
		return nil, fmt.Errorf("unsupported catalog encoding %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}
