// Package api implements the command workflows behind the CLI.
//
// Each workflow takes a Request and returns a Result so commands stay thin:
// they parse flags, open a Session, call one workflow, and render its result.
//
// # Workflows
//
// AddCatalog: resolves and creates the collection root, unpacks archived
// catalog files, and loads every source in a single catalog transaction.
//
// Search: counts the leaves under a path, then fingerprints each one and
// marks catalog matches found.
//
// Verify: clears every found flag, then re-scans each collection at its
// canonical location (root/name, or root/name.zip when only the archive
// exists).
//
// Hunt: fingerprints every leaf under a path and relocates single matches
// into their collections.
//
// List: per-collection set, file, and found counts.
//
// # Sessions
//
// A Session owns the open catalog and, for commands that write, the
// exclusive catalog lock. Every session carries a fresh run id that is
// stamped on all log lines of the command.
package api
