package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/platenum/internal/errors"
)

// Key is the storage key holding the serialized log.
const Key = "vehicleHistory"

// DefaultRetention is how long an entry is kept.
const DefaultRetention = 30 * 24 * time.Hour

// KV is the persistent key-value storage the log lives in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Entry is one past calculation.
type Entry struct {
	Value       string
	FinalNumber int
	Date        time.Time
}

// record is the persisted form: date is milliseconds since the epoch.
type record struct {
	Value       string `json:"value"`
	FinalNumber int    `json:"finalNumber"`
	Date        int64  `json:"date"`
}

// Store is the history log, kept as one JSON array under Key. Every read
// drops entries older than the retention window and writes the pruned log
// back. It is safe for concurrent use.
type Store struct {
	kv        KV
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithRetention overrides DefaultRetention. Non-positive values are ignored.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithClock sets the time source used for pruning and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store over kv.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		retention: DefaultRetention,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Retention returns the configured retention window.
func (s *Store) Retention() time.Duration {
	return s.retention
}

// Record appends e to the log. Repeated inputs are not de-duplicated.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listLocked(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(entries, e))
}

// List returns the log oldest first.
//
// Side effect: entries older than the retention window are removed from
// storage before the result is returned.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(ctx)
}

// Delete removes the entry at index in the freshly pruned ordering.
// Returns INDEX_OUT_OF_RANGE if there is no such entry.
func (s *Store) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.listLocked(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return errors.NewIndexOutOfRange(index, len(entries))
	}
	entries = append(entries[:index], entries[index+1:]...)
	return s.save(ctx, entries)
}

// Clear discards the whole log.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(ctx, Key)
}

// listLocked loads, prunes and persists the log. Caller holds s.mu.
func (s *Store) listLocked(ctx context.Context) ([]Entry, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, err
	}

	var records []record
	if ok {
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			s.logger.Warn("discarding malformed history", "key", Key, "error", err)
			records = nil
		}
	}

	now := s.now()
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		date := time.UnixMilli(r.Date)
		if now.Sub(date) >= s.retention {
			continue
		}
		entries = append(entries, Entry{Value: r.Value, FinalNumber: r.FinalNumber, Date: date})
	}

	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// save serializes entries under Key.
func (s *Store) save(ctx context.Context, entries []Entry) error {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{Value: e.Value, FinalNumber: e.FinalNumber, Date: e.Date.UnixMilli()}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return errors.NewInternal(err)
	}
	return s.kv.Set(ctx, Key, string(data))
}
