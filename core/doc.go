// Package core implements the logcask storage engine: a single append-only
// log file indexed by an in-memory keydir.
//
// Write path:  Set → validate → append record + fsync → update keydir
// Read path:   Get → keydir lookup → read value slice from the log
// Startup:     replay the log from offset 0, folding records into the
//              keydir in file order (last write wins)
//
// The on-disk format is a concatenation of self-describing records:
//
//	[key_len: uint32 BE][value_len: uint32 BE][key bytes][value bytes]
//
// Records are immutable once written. A new record for an existing key
// supersedes the old one logically; the old bytes stay on disk.
package core
