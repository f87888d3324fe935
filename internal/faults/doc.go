// Package faults defines the error markers shared by the catalog loader,
// content index, container layer, and relocator.
//
// Errors are tagged with one sentinel via Wrap and classified with errors.Is.
// IsFatal separates failures that stop a command from those recovered per
// record or per entry.
package faults
