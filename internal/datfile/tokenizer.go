package datfile

import (
	"fmt"
	"strconv"
	"strings"
)

const maxDelimitedFields = 5

type tokenState int

const (
	stateFieldStart tokenState = iota
	stateUnquoted
	stateEscape
	stateDoubleQuoted
	stateSingleQuoted
	stateBackslashQuoted
)

// splitDelimited splits one catalog line into at most five fields.
//
// Transition table (c is the current byte):
//
//	state           c         action                          next
//	field-start     "         keep c                          double-quoted
//	field-start     '         keep c                          single-quoted
//	field-start     \         keep c                          backslash-quoted
//	field-start     ,         emit empty field                field-start
//	field-start     other     keep c                          unquoted
//	unquoted        \         drop c                          escape
//	unquoted        ,         emit field                      field-start
//	unquoted        other     keep c                          unquoted
//	escape          ,         keep literal ','                unquoted
//	escape          \         keep one '\'                    escape
//	escape          other     keep '\' and c                  unquoted
//	quoted(m)       m         keep c, closable                quoted(m)
//	quoted(m)       ,         closable: emit field            field-start
//	                          otherwise keep literal ','      quoted(m)
//	quoted(m)       other     keep c, not closable            quoted(m)
//
// A quoted field is closable right after its opening marker, so a field that
// is only the marker (the set name \) ends at the next comma. End of line
// emits the pending field; a pending escape keeps its backslash. Once five
// fields are emitted the rest of the line is ignored. Markers are stripped
// afterwards by unquote.
func splitDelimited(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}

	var (
		fields   []string
		field    strings.Builder
		state    = stateFieldStart
		closable bool
	)
	emit := func() bool {
		fields = append(fields, field.String())
		field.Reset()
		state = stateFieldStart
		closable = false
		return len(fields) < maxDelimitedFields
	}

	full := false
scan:
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch state {
		case stateFieldStart:
			switch c {
			case '"':
				field.WriteByte(c)
				state, closable = stateDoubleQuoted, true
			case '\'':
				field.WriteByte(c)
				state, closable = stateSingleQuoted, true
			case '\\':
				field.WriteByte(c)
				state, closable = stateBackslashQuoted, true
			case ',':
				if full = !emit(); full {
					break scan
				}
			default:
				field.WriteByte(c)
				state = stateUnquoted
			}
		case stateUnquoted:
			switch c {
			case '\\':
				state = stateEscape
			case ',':
				if full = !emit(); full {
					break scan
				}
			default:
				field.WriteByte(c)
			}
		case stateEscape:
			switch c {
			case ',':
				field.WriteByte(',')
				state = stateUnquoted
			case '\\':
				field.WriteByte('\\')
			default:
				field.WriteByte('\\')
				field.WriteByte(c)
				state = stateUnquoted
			}
		case stateDoubleQuoted, stateSingleQuoted, stateBackslashQuoted:
			marker := quoteMarker(state)
			switch {
			case c == marker:
				field.WriteByte(c)
				closable = true
			case c == ',' && closable:
				if full = !emit(); full {
					break scan
				}
			default:
				field.WriteByte(c)
				closable = false
			}
		}
	}
	if !full {
		if state == stateEscape {
			field.WriteByte('\\')
		}
		emit()
	}
	for i := range fields {
		fields[i] = unquote(fields[i])
	}
	return fields
}

func quoteMarker(state tokenState) byte {
	switch state {
	case stateDoubleQuoted:
		return '"'
	case stateSingleQuoted:
		return '\''
	default:
		return '\\'
	}
}

// unquote strips a matching pair of quote markers. Single-character fields
// are left alone.
func unquote(field string) string {
	if len(field) < 2 {
		return field
	}
	first, last := field[0], field[len(field)-1]
	if first == last && (first == '"' || first == '\'' || first == '\\') {
		return field[1 : len(field)-1]
	}
	return field
}

type delimitedRecord struct {
	name    string
	size    int64
	crc     uint32
	set     string
	comment string
}

// parseDelimitedLine turns one line into a record. A nil record with nil
// error means the line was blank.
func parseDelimitedLine(line string) (*delimitedRecord, error) {
	fields := splitDelimited(line)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}
	rec := &delimitedRecord{name: fields[0], set: fields[3]}
	if rec.name == "" {
		return nil, fmt.Errorf("empty file name")
	}
	size, err := parseHex(fields[1], 63)
	if err != nil {
		return nil, fmt.Errorf("size %q: %w", fields[1], err)
	}
	rec.size = int64(size)
	crc, err := parseHex(fields[2], 32)
	if err != nil {
		return nil, fmt.Errorf("crc %q: %w", fields[2], err)
	}
	rec.crc = uint32(crc)
	if rec.set == `\` {
		rec.set = "/"
	}
	if len(fields) == maxDelimitedFields {
		rec.comment = fields[4]
	}
	return rec, nil
}

func parseHex(value string, bits int) (uint64, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if value == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	return strconv.ParseUint(value, 16, bits)
}
