// Package catalog persists the content index: collections, sets, and file
// records keyed by size and CRC32.
//
// Store wraps a SQLite database (modernc.org/sqlite). Catalog loads run inside
// a single transaction through Load so a failed parse leaves no partial rows.
// Traversal code uses LookupByFingerprint and MarkFound; the relocator uses
// Placement to resolve where a matched record belongs. Lock provides the
// cross-process single-writer guard shared by every mutating command.
package catalog
