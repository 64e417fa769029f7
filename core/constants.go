package core

const (
	OneKilobyte = 1024
	OneMegabyte = 1024 * OneKilobyte

	// DefaultDataFileName is the single log file backing the store.
	DefaultDataFileName = "data.db"

	// Sanity bounds on record fields. A length field above these during
	// replay is treated as a corrupt header, not a real record.
	DefaultMaxKeySize   = 64 * OneKilobyte
	DefaultMaxValueSize = 1 * OneMegabyte

	// KeyLen (4) + ValueLen (4), both big-endian
	recordHeaderSize = 8
)
