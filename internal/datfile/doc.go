// Package datfile parses catalog files into the content index.
//
// Two dialects are supported. The delimited dialect is one record per line
// (name, hex size, hex CRC32, set, optional comment) with quote and
// backslash escaping; see tokenizer.go for the exact grammar. The block
// dialect is the ClrMamePro format of clrmamepro and game blocks holding
// rom lines.
//
// Loading never commits partially: Loader writes through a catalog.Writer
// that the caller runs inside catalog.Store.Load. Record-level errors are
// logged and skipped; structural errors abort the load.
package datfile
