package faults

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCatalogParse marks malformed catalog input. Record-level parse errors
	// skip the record; structural ones abort the load.
	ErrCatalogParse = errors.New("catalog parse error")
	// ErrIndex marks content index (database) failures. Always fatal.
	ErrIndex = errors.New("index error")
	// ErrContainerOpen marks a path that could not be opened as a given container kind.
	ErrContainerOpen = errors.New("container open error")
	// ErrUnreadable marks an entry whose content could not be read for fingerprinting.
	ErrUnreadable = errors.New("entry unreadable")
	// ErrAmbiguousMatch marks a fingerprint matching more than one catalog record.
	ErrAmbiguousMatch = errors.New("ambiguous match")
	// ErrRelocation marks a failed move, copy, or archive append.
	ErrRelocation = errors.New("relocation error")
	// ErrStructural is attached alongside ErrCatalogParse when the catalog's
	// block structure is broken and nothing from it may be kept.
	ErrStructural = errors.New("structural")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Structural tags err as a structural catalog error.
func Structural(err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCatalogParse) {
		err = fmt.Errorf("%w: %w", ErrCatalogParse, err)
	}
	return fmt.Errorf("%w: %w", ErrStructural, err)
}

// IsFatal reports whether err must stop the running command. Index failures,
// structural catalog errors, and context cancellation are fatal; everything
// else is recovered where it occurs.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrIndex), errors.Is(err, ErrStructural):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}

// EventType returns the log event_type label for a marked error.
func EventType(err error) string {
	switch {
	case errors.Is(err, ErrStructural):
		return "catalog_structure_invalid"
	case errors.Is(err, ErrCatalogParse):
		return "catalog_record_invalid"
	case errors.Is(err, ErrIndex):
		return "index_failure"
	case errors.Is(err, ErrContainerOpen):
		return "container_open_failed"
	case errors.Is(err, ErrUnreadable):
		return "entry_unreadable"
	case errors.Is(err, ErrAmbiguousMatch):
		return "ambiguous_match"
	case errors.Is(err, ErrRelocation):
		return "relocation_failed"
	default:
		return "unexpected_error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
