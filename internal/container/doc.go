// Package container gives traversal one view over directories, archives, and
// regular files.
//
// A Directory enumerates its children lazily. Every other path is opened by
// Opener as a Container: a zip, RAR, or 7z archive when one of those readers
// accepts it, otherwise a RegularFile. Containers expose their leaves as
// Entry values through Walk; an Entry is only valid during the callback that
// receives it.
package container
