package faults_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"fileset/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrRelocation, "relocate", "rename", "move failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrRelocation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"relocate", "rename", "move failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"index", faults.Wrap(faults.ErrIndex, "catalog", "lookup", "", errors.New("disk")), true},
		{"record parse", faults.Wrap(faults.ErrCatalogParse, "datfile", "record", "bad size", nil), false},
		{"structural", faults.Structural(errors.New("eof in block")), true},
		{"structural wrapped parse", faults.Structural(faults.Wrap(faults.ErrCatalogParse, "datfile", "", "eof", nil)), true},
		{"container", faults.Wrap(faults.ErrContainerOpen, "container", "zip", "", errors.New("not a zip")), false},
		{"ambiguous", faults.Wrap(faults.ErrAmbiguousMatch, "scan", "match", "", nil), false},
		{"relocation", faults.Wrap(faults.ErrRelocation, "relocate", "copy", "", nil), false},
		{"canceled", fmt.Errorf("walk: %w", context.Canceled), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.IsFatal(tt.err); got != tt.want {
				t.Fatalf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStructuralKeepsParseMarker(t *testing.T) {
	err := faults.Structural(errors.New("unterminated block"))
	if !errors.Is(err, faults.ErrCatalogParse) {
		t.Fatalf("structural error should also be a parse error: %v", err)
	}
	if got := faults.EventType(err); got != "catalog_structure_invalid" {
		t.Fatalf("unexpected event type %q", got)
	}
	if faults.Structural(nil) != nil {
		t.Fatal("Structural(nil) should be nil")
	}
}
