package scan

import "fileset/internal/container"

// Status is the outcome of visiting one leaf.
type Status int

const (
	StatusCounted Status = iota
	StatusFound
	StatusUnknown
	StatusAmbiguous
	StatusUnreadable
	StatusRelocated
	StatusInPlace
	StatusDeleted
	StatusKept
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "Found"
	case StatusUnknown:
		return "Unknown"
	case StatusAmbiguous:
		return "Ambiguous"
	case StatusUnreadable:
		return "Unreadable"
	case StatusRelocated:
		return "Relocated"
	case StatusInPlace:
		return "InPlace"
	case StatusDeleted:
		return "Deleted"
	case StatusKept:
		return "Duplicate"
	case StatusFailed:
		return "Failed"
	default:
		return "Counted"
	}
}

// Visit describes one leaf after it was processed.
type Visit struct {
	Path        string
	Kind        container.Kind
	Status      Status
	Destination string
	Err         error
}

// Observer is notified after every leaf. count is the running leaf total.
type Observer interface {
	Visit(v Visit, count int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(v Visit, count int)

func (f ObserverFunc) Visit(v Visit, count int) { f(v, count) }
