package core

import (
	"os"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/logcask/logcask/internal/lock"
	"github.com/logcask/logcask/internal/metrics"
	"github.com/logcask/logcask/internal/utils"
)

// Store composes the append-only log and the keydir into set/get operations,
// enforcing the consistency contract between them: the keydir only ever
// points at records that were durably appended.
//
// A Store is an explicit object; callers construct one per data file and
// pass it to whatever adapter serves commands. Zero-value fields are filled
// with defaults by Start.
type Store struct {
	DataFilePath string
	MaxKeySize   int
	MaxValueSize int

	Logger  *zap.Logger
	Metrics *metrics.StoreMetrics

	lockFile *os.File
	log      *Log
	keyDir   KeyDir

	dataMu   sync.Mutex   // serializes appends
	keyDirMu sync.RWMutex // for keyDir
}

// WithLogger sets the logger for the store.
func (s *Store) WithLogger(log *zap.Logger) {
	s.Logger = log.With(zap.String("service", "store"))
}

// Start locks the store, then rebuilds the keydir by replaying the log.
//
// A missing data file is a legitimately empty store. A data file that exists
// but cannot be opened is fatal: silently starting with an empty keydir
// would discard all history on what may be a transient permission error.
func (s *Store) Start() error {
	if s.DataFilePath == "" {
		s.DataFilePath = DefaultDataFileName
	}
	if s.MaxKeySize == 0 {
		s.MaxKeySize = DefaultMaxKeySize
	}
	if s.MaxValueSize == 0 {
		s.MaxValueSize = DefaultMaxValueSize
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.Metrics == nil {
		s.Metrics = metrics.NewStoreMetrics()
	}

	lf, err := lock.LockStore(s.DataFilePath)
	if err != nil {
		return err
	}
	s.lockFile = lf

	s.log = &Log{
		Path:         s.DataFilePath,
		MaxKeySize:   s.MaxKeySize,
		MaxValueSize: s.MaxValueSize,
	}

	if !utils.PathExists(s.DataFilePath) {
		s.Logger.Info("no data file found, starting with an empty store",
			zap.String("path", s.DataFilePath))
		s.keyDirMu.Lock()
		s.keyDir = make(KeyDir)
		s.keyDirMu.Unlock()
		return nil
	}

	if err := s.RebuildKeyDir(); err != nil {
		lock.UnlockStore(s.lockFile)
		s.lockFile = nil
		return err
	}

	return nil
}

// RebuildKeyDir clears the keydir and repopulates it from the log. Replay
// order is write order, so unconditionally overwriting on every record is
// the entire last-write-wins mechanism.
//
// Running it twice on an unmodified log yields identical keydirs.
func (s *Store) RebuildKeyDir() error {
	s.keyDirMu.Lock()
	defer s.keyDirMu.Unlock()

	s.keyDir = make(KeyDir)

	stats, err := s.log.Replay(func(key string, offset int64, valueLen uint32) error {
		s.keyDir.Update(key, offset, valueLen)
		return nil
	})
	if err != nil {
		return err
	}

	s.Metrics.ReplayRecords.Add(float64(stats.Records))

	switch {
	case stats.TornTail:
		s.Metrics.ReplayTruncations.Inc()
		s.Logger.Warn("log replay stopped at a torn tail, dropping fragment",
			zap.String("path", s.DataFilePath),
			zap.Int("records", stats.Records),
			zap.Int64("usable_bytes", stats.UsableBytes))

		// The fragment ends at physical EOF, so nothing can follow it. Cut
		// it off so the log is a clean prefix of complete records again:
		// appends go to physical end of file, and a fragment left in place
		// would strand every later write behind a tail that replay refuses
		// to cross.
		if err := utils.TruncateAt(s.DataFilePath, stats.UsableBytes); err != nil {
			return err
		}
	case stats.Truncated:
		s.Metrics.ReplayTruncations.Inc()

		// Unparseable bytes that are not a fragment at end of file may be
		// sitting in front of intact records; truncating here could destroy
		// committed data. The remainder is ignored but left on disk.
		s.Logger.Error("log contains unparseable data, ignoring remainder",
			zap.String("path", s.DataFilePath),
			zap.Int("records", stats.Records),
			zap.Int64("usable_bytes", stats.UsableBytes))
	default:
		s.Logger.Info("log replay complete",
			zap.String("path", s.DataFilePath),
			zap.Int("records", stats.Records),
			zap.Int("keys", len(s.keyDir)))
	}

	return nil
}

// Set durably appends a record for key and then updates the keydir. On any
// append failure the keydir is left untouched, so it never references a
// record that did not reach stable storage.
func (s *Store) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !utf8.ValidString(key) || !utf8.ValidString(value) {
		return ErrInvalidText
	}

	// The keydir update stays inside the append critical section so that
	// keydir order always matches log order: two appends to the same key
	// must not land their keydir updates in the opposite order.
	s.dataMu.Lock()
	offset, err := s.log.Append([]byte(key), []byte(value))
	if err != nil {
		s.dataMu.Unlock()
		return err
	}

	s.keyDirMu.Lock()
	s.keyDir.Update(key, offset, uint32(len(value)))
	s.keyDirMu.Unlock()
	s.dataMu.Unlock()

	s.Metrics.SetsTotal.Inc()
	return nil
}

// Get resolves key through the keydir. A missing key is a normal outcome
// (found == false, nil error). A present keydir entry that fails to resolve
// from the log is surfaced as an error, never as not-found: it means the
// log and the keydir have diverged.
func (s *Store) Get(key string) (value string, found bool, err error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	s.Metrics.GetsTotal.Inc()

	s.keyDirMu.RLock()
	entry, ok := s.keyDir.Lookup(key)
	s.keyDirMu.RUnlock()

	if !ok {
		s.Metrics.GetMisses.Inc()
		return "", false, nil
	}

	value, err = s.log.ReadValue(entry.Offset, entry.ValueSize)
	if err != nil {
		s.Metrics.ReadErrors.Inc()
		s.Logger.Error("indexed read failed",
			zap.String("key", key),
			zap.Int64("offset", entry.Offset),
			zap.Error(err))
		return "", false, err
	}

	return value, true, nil
}

// Exists reports whether key has an entry in the keydir.
func (s *Store) Exists(key string) bool {
	s.keyDirMu.RLock()
	_, ok := s.keyDir.Lookup(key)
	s.keyDirMu.RUnlock()
	return ok
}

// Count returns the number of live keys.
func (s *Store) Count() int {
	s.keyDirMu.RLock()
	n := len(s.keyDir)
	s.keyDirMu.RUnlock()
	return n
}

// Keys returns all live keys in sorted order.
func (s *Store) Keys() []string {
	s.keyDirMu.RLock()
	keys := make([]string, 0, len(s.keyDir))
	for k := range s.keyDir {
		keys = append(keys, k)
	}
	s.keyDirMu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Stop releases the store lock. The log itself holds no open resources
// between calls, so there is nothing else to tear down. Stop is idempotent.
func (s *Store) Stop() error {
	var result *multierror.Error

	if s.lockFile != nil {
		if err := lock.UnlockStore(s.lockFile); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "release store lock"))
		}
		s.lockFile = nil
	}

	return result.ErrorOrNil()
}
