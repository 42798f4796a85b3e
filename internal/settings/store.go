package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entry is one stored key with its JSON-encoded value.
type entry struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (entry) TableName() string { return "storage" }

// Change describes one key whose stored value changed. Old or New is empty when the key
// was created or removed.
type Change struct {
	Key string
	Old string
	New string
}

// Store is a persistent JSON key-value store with change notification.
type Store struct {
	db     *gorm.DB
	Logger zerolog.Logger

	mu          sync.Mutex
	cache       map[string]string
	listeners   map[int]func([]Change)
	nextID      int
	dataVersion int64
}

// Open opens (or creates) the store at path. An empty path keeps everything in memory.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	// data_version is tracked per connection, and an in-memory database lives only as
	// long as its connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA busy_timeout = 5000;").Error; err != nil {
		return nil, fmt.Errorf("error setting PRAGMA: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage table: %w", err)
	}

	s := &Store{db: db, Logger: log, listeners: map[int]func([]Change){}}
	if s.cache, err = s.load(); err != nil {
		return nil, err
	}
	if s.dataVersion, err = s.readDataVersion(); err != nil {
		return nil, err
	}
	if path != "" {
		s.Logger.Info().Str("path", path).Msg("Using settings DB")
	} else {
		s.Logger.Info().Msg("Using in-memory settings DB")
	}
	return s, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Raw returns the JSON document stored under key.
func (s *Store) Raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.cache[key]
	return value, ok
}

// Get decodes the value stored under key into out. It reports false if the key is absent.
func (s *Store) Get(key string, out any) (bool, error) {
	raw, ok := s.Raw(key)
	if !ok {
		return false, nil
	}
	if err := sonic.UnmarshalString(raw, out); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key as JSON and notifies listeners if the stored document changed.
func (s *Store) Set(key string, value any) error {
	return s.SetMany(map[string]any{key: value})
}

// SetMany stores every value in one transaction: either all of them land or none do.
// Listeners get the changed keys as one batch once all of them are visible.
func (s *Store) SetMany(values map[string]any) error {
	encoded := make(map[string]string, len(values))
	for key, value := range values {
		if key == "" {
			return errors.New("empty key")
		}
		raw, err := sonic.MarshalString(value)
		if err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		encoded[key] = raw
	}

	s.mu.Lock()
	var changes []Change
	for key, raw := range encoded {
		if old, existed := s.cache[key]; !existed || old != raw {
			changes = append(changes, Change{Key: key, Old: old, New: raw})
		}
	}
	if len(changes) == 0 {
		s.mu.Unlock()
		return nil
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	rows := make([]entry, len(changes))
	for i, c := range changes {
		rows[i] = entry{Key: c.Key, Value: c.New}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("store %d settings: %w", len(rows), err)
	}
	for _, c := range changes {
		s.cache[c.Key] = c.New
	}
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	old, existed := s.cache[key]
	if !existed {
		s.mu.Unlock()
		return nil
	}
	if err := s.db.Delete(&entry{Key: key}).Error; err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove %q: %w", key, err)
	}
	delete(s.cache, key)
	s.mu.Unlock()

	s.notify([]Change{{Key: key, Old: old}})
	return nil
}

// Keys returns every stored key with the given prefix, sorted.
func (s *Store) Keys(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.cache {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// AddListener registers fn for every change and returns a function that removes it.
// Listeners run synchronously on the goroutine that made or observed the change.
func (s *Store) AddListener(fn func(Change)) (remove func()) {
	return s.AddBatchListener(func(changes []Change) {
		for _, c := range changes {
			fn(c)
		}
	})
}

// AddBatchListener is AddListener for callers that want each write (or each external
// sync) as a single call.
func (s *Store) AddBatchListener(fn func([]Change)) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Sync picks up commits made through other connections to the same database file and
// notifies listeners of every key that differs. It reports whether anything changed.
func (s *Store) Sync() (bool, error) {
	version, err := s.readDataVersion()
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	if version == s.dataVersion {
		s.mu.Unlock()
		return false, nil
	}
	fresh, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	changes := diff(s.cache, fresh)
	s.cache = fresh
	s.dataVersion = version
	s.mu.Unlock()

	if len(changes) > 0 {
		s.Logger.Debug().Int("changes", len(changes)).Msg("Picked up external settings changes")
		s.notify(changes)
	}
	return len(changes) > 0, nil
}

// Watch calls Sync every interval until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sync(); err != nil {
				s.Logger.Error().Err(err).Msg("Failed to sync settings")
			}
		}
	}
}

func (s *Store) load() (map[string]string, error) {
	var entries []entry
	if err := s.db.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func (s *Store) readDataVersion() (int64, error) {
	var version int64
	if err := s.db.Raw("PRAGMA data_version;").Scan(&version).Error; err != nil {
		return 0, fmt.Errorf("read data_version: %w", err)
	}
	return version, nil
}

func (s *Store) notify(changes []Change) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func([]Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(changes)
	}
}

func diff(old, fresh map[string]string) []Change {
	var changes []Change
	for key, value := range fresh {
		if prev, ok := old[key]; !ok || prev != value {
			changes = append(changes, Change{Key: key, Old: old[key], New: value})
		}
	}
	for key, value := range old {
		if _, ok := fresh[key]; !ok {
			changes = append(changes, Change{Key: key, Old: value})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}
