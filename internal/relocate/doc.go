// Package relocate moves matched files into their canonical place under a
// collection root.
//
// A matched record resolves to a Target: the collection directory
// (root/collection) plus the set-relative file name. Files are placed loose
// into that tree, or packed as stored members into root/collection.zip when
// the zip policy is set. Local sources may be renamed or copied; archive
// members are streamed and never removed from their archive.
package relocate
