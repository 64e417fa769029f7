package core

// KeyDirEntry represents the in-memory index entry for a single key.
//
// Each entry points at the latest known record for the key in the log file.
// Older records for the same key may still exist on disk but are never
// referenced once a later record has been replayed or written.
//
// Entries are never persisted; the keydir is fully reconstructible from the
// log and is rebuilt on every startup.
type KeyDirEntry struct {
	Offset    int64  // Byte offset in the log file where the record starts
	ValueSize uint32 // Size of the value in bytes
}

// KeyDir is the in-memory index mapping keys to their latest on-disk entries.
//
// It is the primary structure used to service reads without scanning the
// log. Lookups are O(1); rebuild cost is one sequential pass over the log.
type KeyDir map[string]KeyDirEntry

// Update unconditionally overwrites the entry for key. During replay the
// log is consumed in write order, so calling Update for every record
// reproduces last-write-wins with no further conflict handling.
func (kd KeyDir) Update(key string, offset int64, valueSize uint32) {
	kd[key] = KeyDirEntry{Offset: offset, ValueSize: valueSize}
}

// Lookup returns the entry for key, if present.
func (kd KeyDir) Lookup(key string) (KeyDirEntry, bool) {
	entry, ok := kd[key]
	return entry, ok
}
