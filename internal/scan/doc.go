// Package scan walks a filesystem tree, fingerprints every leaf, and
// reconciles it against the catalog.
//
// A Walker descends directories depth-first, opens each non-directory
// through the container Opener, and visits every leaf: loose files and
// archive members alike. The Mode bits decide what a visit does: COUNT only
// counts, SEARCH and VERIFY mark matches found, HUNT hands single matches to
// the relocator. Observers receive one Visit per leaf for progress and
// verbose output.
package scan
