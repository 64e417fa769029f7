package core

import "errors"

var (
	// ErrEmptyKey is returned when a key is empty.
	ErrEmptyKey = errors.New("key must not be empty")

	// ErrKeyTooLarge is returned when a key exceeds the configured bound.
	ErrKeyTooLarge = errors.New("key exceeds maximum size")

	// ErrValueTooLarge is returned when a value exceeds the configured bound.
	ErrValueTooLarge = errors.New("value exceeds maximum size")

	// ErrInvalidText is returned when a key or value is not valid UTF-8.
	ErrInvalidText = errors.New("key and value must be valid UTF-8 text")

	// ErrCorruptRecord is returned when the bytes at an indexed offset no
	// longer parse as the record the keydir expects. This means the log and
	// the keydir have diverged (e.g. the file was truncated externally).
	ErrCorruptRecord = errors.New("corrupt record at indexed offset")

	// ErrInvalidEncoding is returned when stored value bytes are not valid
	// UTF-8 text.
	ErrInvalidEncoding = errors.New("stored value is not valid UTF-8 text")
)

// IsInvalidArgument reports whether err is a request validation error, as
// opposed to an I/O or corruption error. Validation errors never touch disk
// state.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrEmptyKey) ||
		errors.Is(err, ErrKeyTooLarge) ||
		errors.Is(err, ErrValueTooLarge) ||
		errors.Is(err, ErrInvalidText)
}
