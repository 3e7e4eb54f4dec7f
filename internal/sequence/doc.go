// Package sequence renames the image files of a directory into a numbered
// sequence: 1.jpg, 2.jpg, 3.jpg and so on.
//
// # Selection and Order
//
// Only regular files whose name ends with the configured extension are
// selected. The match is literal and case sensitive, so "a.JPG" is not a
// ".jpg" file. Subdirectories and other files are never touched. Selected
// names are sorted by byte value and numbered from Options.Start in that
// order.
//
// # Collisions
//
// Renames run in two phases. Every selected file is first moved to a unique
// temporary name in the same directory, then from there to its final name.
// A file can therefore take over a name another selected file is giving up
// ("2.jpg" -> "1.jpg" while "1.jpg" -> "2.jpg"). A final name held by a file
// outside the selection is refused with ErrTargetExists before anything is
// moved.
//
// # Journal and Undo
//
// When Options.JournalPath is set, a YAML journal of the completed batch is
// written, recording each rename with an xxh3 fingerprint of the file's
// content. Undo reverses a journal after checking every fingerprint.
//
// # Filesystem
//
// A Renamer works against an afero.Fs. Production code uses the OS
// filesystem; tests use an in-memory one.
package sequence
