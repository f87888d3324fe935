// Package preflight provides readiness checks for the filesystem paths
// fileset reads and writes.
//
// The CLI "fileset config validate" command runs RunAll and reports each
// result. Optional paths are only checked when configured.
package preflight
