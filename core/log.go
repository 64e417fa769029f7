package core

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Log is the append-only record file. It is the sole source of truth for
// key-value data; the keydir is derived from it.
//
// The file handle is acquired per call and released on every exit path, so
// a Log holds no open resources between operations.
type Log struct {
	Path         string
	MaxKeySize   int
	MaxValueSize int
}

// NewLog returns a Log over path with the default sanity bounds.
func NewLog(path string) *Log {
	return &Log{
		Path:         path,
		MaxKeySize:   DefaultMaxKeySize,
		MaxValueSize: DefaultMaxValueSize,
	}
}

// ReplayStats describes one pass of Replay over the log file.
type ReplayStats struct {
	Records     int   // complete records yielded
	UsableBytes int64 // offset one past the last complete record
	Truncated   bool  // scan stopped before consuming the whole file
	TornTail    bool  // the remainder is a partial record ending at physical EOF
}

func encodeRecord(key, value []byte) []byte {
	buf := make([]byte, recordHeaderSize+len(key)+len(value))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(value)))
	copy(buf[recordHeaderSize:], key)
	copy(buf[recordHeaderSize+len(key):], value)
	return buf
}

// Append encodes one record and durably appends it to the log. The returned
// offset is the size of the file before the write, i.e. the address at which
// the record begins.
//
// The record is written with a single write call and fsynced before Append
// returns: a crash after return cannot lose the write, a crash before return
// may lose it but leaves earlier records untouched. A short write leaves a
// torn tail that the next Replay drops.
func (l *Log) Append(key, value []byte) (int64, error) {
	if len(key) == 0 {
		return 0, ErrEmptyKey
	}
	if len(key) > l.MaxKeySize {
		return 0, ErrKeyTooLarge
	}
	if len(value) > l.MaxValueSize {
		return 0, ErrValueTooLarge
	}

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, errors.Wrap(err, "open log for append")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, errors.Wrap(err, "stat log")
	}
	offset := info.Size()

	if _, err := f.Write(encodeRecord(key, value)); err != nil {
		f.Close()
		return 0, errors.Wrap(err, "append record")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, errors.Wrap(err, "sync log")
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "close log")
	}

	return offset, nil
}

// Replay parses records sequentially from offset 0 and calls fn for each
// complete one, in file order. Values are skipped, never materialized.
//
// A torn or corrupt tail ends the scan before the offending record;
// everything yielded up to that point stays valid. This trades silent loss
// of an unflushed tail for availability after a crash, and is reported via
// ReplayStats rather than an error. Two stop classes are distinguished: a
// record fragment ending at physical EOF (the crash artifact, TornTail) and
// unparseable bytes that may have anything after them (bad length field,
// non-UTF-8 key). Only the former is safe to repair by truncation.
//
// Read errors other than end-of-file are returned as errors: an unreadable
// file is not a short one, and must not be mistaken for a torn tail.
//
// Replay is restartable: every call scans from offset 0.
func (l *Log) Replay(fn func(key string, offset int64, valueLen uint32) error) (ReplayStats, error) {
	var stats ReplayStats

	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, errors.Wrap(err, "open log for replay")
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]byte, recordHeaderSize)
	var offset int64

	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				// The previous record ended exactly at EOF.
				break
			}
			if err == io.ErrUnexpectedEOF {
				stats.Truncated = true
				stats.TornTail = true
				break
			}
			return stats, errors.Wrap(err, "read record header")
		}

		keyLen := binary.BigEndian.Uint32(header[0:4])
		valueLen := binary.BigEndian.Uint32(header[4:8])
		if keyLen == 0 || keyLen > uint32(l.MaxKeySize) || valueLen > uint32(l.MaxValueSize) {
			stats.Truncated = true
			break
		}

		key := make([]byte, keyLen)
		if _, err := io.ReadFull(r, key); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				stats.Truncated = true
				stats.TornTail = true
				break
			}
			return stats, errors.Wrap(err, "read record key")
		}
		if !utf8.Valid(key) {
			stats.Truncated = true
			break
		}

		if _, err := r.Discard(int(valueLen)); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				stats.Truncated = true
				stats.TornTail = true
				break
			}
			return stats, errors.Wrap(err, "skip record value")
		}

		if err := fn(string(key), offset, valueLen); err != nil {
			return stats, err
		}

		offset += recordHeaderSize + int64(keyLen) + int64(valueLen)
		stats.Records++
		stats.UsableBytes = offset
	}

	return stats, nil
}

// ReadValue reads the value of the record starting at offset. The stored
// header is re-validated against the keydir's expectation: a value length
// mismatch or an implausible key length means the log no longer contains the
// record the keydir believes is there.
func (l *Log) ReadValue(offset int64, valueLen uint32) (string, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return "", errors.Wrap(err, "open log for read")
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "seek record")
	}

	header := make([]byte, recordHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", ErrCorruptRecord
		}
		return "", errors.Wrap(err, "read record header")
	}

	keyLen := binary.BigEndian.Uint32(header[0:4])
	storedValueLen := binary.BigEndian.Uint32(header[4:8])
	if storedValueLen != valueLen || keyLen == 0 || keyLen > uint32(l.MaxKeySize) {
		return "", ErrCorruptRecord
	}

	if _, err := f.Seek(int64(keyLen), io.SeekCurrent); err != nil {
		return "", errors.Wrap(err, "seek value")
	}

	value := make([]byte, valueLen)
	if _, err := io.ReadFull(f, value); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return "", ErrCorruptRecord
		}
		return "", errors.Wrap(err, "read value")
	}

	if !utf8.Valid(value) {
		return "", ErrInvalidEncoding
	}

	return string(value), nil
}
