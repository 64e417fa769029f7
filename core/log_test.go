package core

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func tempLog(t *testing.T) *Log {
	t.Helper()
	return NewLog(filepath.Join(t.TempDir(), DefaultDataFileName))
}

type replayed struct {
	key      string
	offset   int64
	valueLen uint32
}

func collectReplay(t *testing.T, l *Log) ([]replayed, ReplayStats) {
	t.Helper()

	var records []replayed
	stats, err := l.Replay(func(key string, offset int64, valueLen uint32) error {
		records = append(records, replayed{key, offset, valueLen})
		return nil
	})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	return records, stats
}

func TestEncodedByteLayout(t *testing.T) {
	encoded := encodeRecord([]byte("a"), []byte("xy"))

	// Expected bytes structure:
	// uint32 big-endian key length
	// uint32 big-endian value length
	// []byte key
	// []byte value
	if got := binary.BigEndian.Uint32(encoded[0:4]); got != 1 {
		t.Fatalf("key length mismatch: got %v want 1", got)
	}
	if got := binary.BigEndian.Uint32(encoded[4:8]); got != 2 {
		t.Fatalf("value length mismatch: got %v want 2", got)
	}
	if encoded[8] != 'a' {
		t.Fatalf("expected key byte 'a', got %v", encoded[8])
	}
	if string(encoded[9:]) != "xy" {
		t.Fatalf("expected value bytes \"xy\", got %q", encoded[9:])
	}
	if len(encoded) != 11 {
		t.Fatalf("expected 11 encoded bytes, got %d", len(encoded))
	}
}

func TestAppendReturnsPriorEndOfFile(t *testing.T) {
	l := tempLog(t)

	off1, err := l.Append([]byte("foo"), []byte("bar"))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if off1 != 0 {
		t.Fatalf("first record should start at 0, got %d", off1)
	}

	off2, err := l.Append([]byte("baz"), []byte("q"))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	want := int64(recordHeaderSize + 3 + 3)
	if off2 != want {
		t.Fatalf("second record should start at %d, got %d", want, off2)
	}
}

func TestAppendValidation(t *testing.T) {
	l := tempLog(t)

	if _, err := l.Append(nil, []byte("v")); err != ErrEmptyKey {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, err := l.Append(make([]byte, l.MaxKeySize+1), []byte("v")); err != ErrKeyTooLarge {
		t.Fatalf("expected ErrKeyTooLarge, got %v", err)
	}
	if _, err := l.Append([]byte("k"), make([]byte, l.MaxValueSize+1)); err != ErrValueTooLarge {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}

	// Nothing may have reached the file on validation failure.
	if _, err := os.Stat(l.Path); !os.IsNotExist(err) {
		t.Fatalf("validation failure should not create the file, stat err: %v", err)
	}
}

func TestAppendReadValueRoundTrip(t *testing.T) {
	l := tempLog(t)

	tests := []struct {
		key   string
		value string
	}{
		{"a", "1"},
		{"city", "new york"},
		{"emoji", "🚀🔥"},
		{"empty-value", ""},
		{"big", string(make([]byte, 4096))},
	}

	type written struct {
		offset   int64
		valueLen uint32
	}
	offsets := make(map[string]written)

	for _, tt := range tests {
		off, err := l.Append([]byte(tt.key), []byte(tt.value))
		if err != nil {
			t.Fatalf("append %q failed: %v", tt.key, err)
		}
		offsets[tt.key] = written{off, uint32(len(tt.value))}
	}

	for _, tt := range tests {
		w := offsets[tt.key]
		got, err := l.ReadValue(w.offset, w.valueLen)
		if err != nil {
			t.Fatalf("read %q failed: %v", tt.key, err)
		}
		if got != tt.value {
			t.Fatalf("value mismatch for %q: got %q want %q", tt.key, got, tt.value)
		}
	}
}

func TestReplayYieldsRecordsInWriteOrder(t *testing.T) {
	l := tempLog(t)

	writes := []struct{ key, value string }{
		{"a", "1"},
		{"b", "hello world"},
		{"a", "2"},
	}
	for _, w := range writes {
		if _, err := l.Append([]byte(w.key), []byte(w.value)); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	records, stats := collectReplay(t, l)
	if stats.Truncated {
		t.Fatal("clean log reported as truncated")
	}
	if len(records) != len(writes) {
		t.Fatalf("expected %d records, got %d", len(writes), len(records))
	}
	for i, w := range writes {
		if records[i].key != w.key {
			t.Fatalf("record %d: got key %q want %q", i, records[i].key, w.key)
		}
		if records[i].valueLen != uint32(len(w.value)) {
			t.Fatalf("record %d: got value length %d want %d", i, records[i].valueLen, len(w.value))
		}
	}
	if records[0].offset >= records[1].offset || records[1].offset >= records[2].offset {
		t.Fatal("offsets must be strictly ascending")
	}
}

func TestReplayMissingAndEmptyFile(t *testing.T) {
	l := tempLog(t)

	records, stats := collectReplay(t, l)
	if len(records) != 0 || stats.Truncated {
		t.Fatalf("missing file: expected clean empty replay, got %d records truncated=%v", len(records), stats.Truncated)
	}

	if err := os.WriteFile(l.Path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	records, stats = collectReplay(t, l)
	if len(records) != 0 || stats.Truncated {
		t.Fatalf("empty file: expected clean empty replay, got %d records truncated=%v", len(records), stats.Truncated)
	}
}

func TestReplayTornTail(t *testing.T) {
	complete := append(encodeRecord([]byte("a"), []byte("1")), encodeRecord([]byte("b"), []byte("hello world"))...)
	fragment := encodeRecord([]byte("torn"), []byte("never committed"))

	// Every proper prefix of the trailing record must be dropped without
	// touching the two complete records before it.
	for cut := 1; cut < len(fragment); cut++ {
		l := tempLog(t)
		if err := os.WriteFile(l.Path, append(append([]byte{}, complete...), fragment[:cut]...), 0644); err != nil {
			t.Fatal(err)
		}

		records, stats := collectReplay(t, l)
		if len(records) != 2 {
			t.Fatalf("cut %d: expected 2 records, got %d", cut, len(records))
		}
		if !stats.Truncated || !stats.TornTail {
			t.Fatalf("cut %d: fragment at EOF must be classified as a torn tail, got %+v", cut, stats)
		}
		if stats.UsableBytes != int64(len(complete)) {
			t.Fatalf("cut %d: usable bytes %d, want %d", cut, stats.UsableBytes, len(complete))
		}
	}
}

func TestReplayStopsOnOversizedLengthField(t *testing.T) {
	l := tempLog(t)

	if _, err := l.Append([]byte("good"), []byte("record")); err != nil {
		t.Fatal(err)
	}

	// A header claiming a 4 GiB key, followed by garbage. Without the
	// sanity bound this would drive a 4 GiB allocation during replay.
	bogus := make([]byte, recordHeaderSize+8)
	binary.BigEndian.PutUint32(bogus[0:4], 0xFFFFFFFF)
	binary.BigEndian.PutUint32(bogus[4:8], 1)
	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(bogus); err != nil {
		t.Fatal(err)
	}
	f.Close()

	records, stats := collectReplay(t, l)
	if len(records) != 1 || records[0].key != "good" {
		t.Fatalf("expected only the good record, got %v", records)
	}
	if !stats.Truncated {
		t.Fatal("oversized length field not reported as truncation")
	}
	if stats.TornTail {
		t.Fatal("a bad length field is not a torn tail: bytes after it are not provably a fragment")
	}
}

func TestReplayCorruptHeaderMidFile(t *testing.T) {
	l := tempLog(t)

	good := encodeRecord([]byte("a"), []byte("1"))
	bogus := make([]byte, recordHeaderSize)
	binary.BigEndian.PutUint32(bogus[0:4], 0xFFFFFFFF)
	binary.BigEndian.PutUint32(bogus[4:8], 1)
	after := encodeRecord([]byte("b"), []byte("2"))

	content := append(append(append([]byte{}, good...), bogus...), after...)
	if err := os.WriteFile(l.Path, content, 0644); err != nil {
		t.Fatal(err)
	}

	// Replay cannot resynchronize past the bad header, so only the prefix
	// is usable, but the stop must not be classified as a torn tail: an
	// intact record sits right behind it.
	records, stats := collectReplay(t, l)
	if len(records) != 1 || records[0].key != "a" {
		t.Fatalf("expected only the leading record, got %v", records)
	}
	if !stats.Truncated || stats.TornTail {
		t.Fatalf("mid-file corruption misclassified: %+v", stats)
	}
	if stats.UsableBytes != int64(len(good)) {
		t.Fatalf("usable bytes %d, want %d", stats.UsableBytes, len(good))
	}

	// Replay is read-only; the bytes behind the stop point stay on disk.
	info, err := os.Stat(l.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(content)) {
		t.Fatalf("replay modified the file: size %d, want %d", info.Size(), len(content))
	}
}

func TestReplayStopsOnInvalidUTF8Key(t *testing.T) {
	l := tempLog(t)

	if _, err := l.Append([]byte("good"), []byte("record")); err != nil {
		t.Fatal(err)
	}

	bad := encodeRecord([]byte{0xff, 0xfe, 0xfd}, []byte("value"))
	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(bad); err != nil {
		t.Fatal(err)
	}
	f.Close()

	records, stats := collectReplay(t, l)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !stats.Truncated {
		t.Fatal("invalid UTF-8 key not reported as truncation")
	}
	if stats.TornTail {
		t.Fatal("a structurally complete record with a bad key is not a torn tail")
	}
}

func TestReplayIsRestartable(t *testing.T) {
	l := tempLog(t)

	for _, w := range []struct{ key, value string }{{"a", "1"}, {"b", "2"}, {"a", "3"}} {
		if _, err := l.Append([]byte(w.key), []byte(w.value)); err != nil {
			t.Fatal(err)
		}
	}

	first, firstStats := collectReplay(t, l)
	second, secondStats := collectReplay(t, l)

	if firstStats != secondStats {
		t.Fatalf("stats differ between passes: %+v vs %+v", firstStats, secondStats)
	}
	if len(first) != len(second) {
		t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReadValueDetectsCorruption(t *testing.T) {
	l := tempLog(t)

	off, err := l.Append([]byte("key"), []byte("value"))
	if err != nil {
		t.Fatal(err)
	}

	// Length the keydir believes in no longer matches the stored header.
	if _, err := l.ReadValue(off, 99); err != ErrCorruptRecord {
		t.Fatalf("expected ErrCorruptRecord on length mismatch, got %v", err)
	}

	// Offset past the end of the file.
	if _, err := l.ReadValue(1<<20, 5); err != ErrCorruptRecord {
		t.Fatalf("expected ErrCorruptRecord past EOF, got %v", err)
	}

	// File truncated under a valid keydir entry.
	if err := os.Truncate(l.Path, recordHeaderSize+3+2); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ReadValue(off, 5); err != ErrCorruptRecord {
		t.Fatalf("expected ErrCorruptRecord after truncation, got %v", err)
	}
}

func TestReadValueDetectsInvalidEncoding(t *testing.T) {
	l := tempLog(t)

	// Write a record with non-UTF-8 value bytes directly; Append would
	// accept them (values are validated at the engine boundary).
	raw := encodeRecord([]byte("key"), []byte{0xff, 0xfe})
	if err := os.WriteFile(l.Path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := l.ReadValue(0, 2); err != ErrInvalidEncoding {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}
