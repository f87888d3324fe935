package catalog

// Collection is a named group of sets loaded from one catalog file.
type Collection struct {
	ID          int64
	Name        string
	Root        string
	Description string
	Version     string
	Comment     string
	Header      string
}

// Set is a named group of file records within a collection.
type Set struct {
	ID           int64
	CollectionID int64
	Name         string
	Description  string
}

// FileRecord is one expected file. SetID is zero until the record is assigned
// to a set. Empty string fields are stored as NULL.
type FileRecord struct {
	ID      int64
	SetID   int64
	Name    string
	Size    int64
	CRC32   uint32
	MD5     string
	SHA1    string
	Flags   string
	Comment string
	Found   bool
}

// Fingerprint identifies content by size and CRC32.
type Fingerprint struct {
	Size  int64
	CRC32 uint32
}

// Outcome classifies a fingerprint lookup.
type Outcome int

const (
	// OutcomeNone means no record carries the fingerprint.
	OutcomeNone Outcome = iota
	// OutcomeOne means exactly one record carries the fingerprint.
	OutcomeOne
	// OutcomeAmbiguous means several records share the fingerprint.
	OutcomeAmbiguous
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOne:
		return "one"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// Match is the result of LookupByFingerprint. ID is only meaningful for OutcomeOne.
type Match struct {
	Outcome Outcome
	ID      int64
	Count   int
}

// Placement joins a record with its set and collection for relocation.
type Placement struct {
	FileID     int64
	Collection string
	Root       string
	Set        string
	File       string
	Found      bool
}

// Summary aggregates one collection for listing.
type Summary struct {
	CollectionID int64
	Name         string
	Root         string
	Sets         int
	Files        int
	Found        int
	Bytes        int64
}
