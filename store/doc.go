// Package store persists the role and user collections as JSON documents
// on the local filesystem.
//
// # Model
//
// The store is deliberately whole-document: every save rewrites the full
// collection through a staging file and an atomic rename. That keeps the
// on-disk format inspectable and hand-editable while guaranteeing a reader
// never sees a torn write. Hand edits are re-validated on every load; a
// collection that fails validation surfaces [ErrCorrupt] rather than a
// partial result.
//
// # What this package must NOT do
//
//   - Hash, verify, or otherwise interpret credentials.
//   - Cache collections between calls; every load reads the disk.
//   - Import any other cask package.
package store
