package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/platenum/internal/db"
	"github.com/hpungsan/platenum/internal/errors"
)

// memKV is an in-memory KV for tests.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// failingKV returns err from every call.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
func (f failingKV) Delete(context.Context, string) error              { return f.err }

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *memKV, *fakeClock) {
	t.Helper()
	kv := newMemKV()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(kv, WithClock(clock.Now), WithLogger(quietLogger())), kv, clock
}

func persisted(t *testing.T, kv *memKV) []record {
	t.Helper()
	raw, ok := kv.data[Key]
	if !ok {
		return nil
	}
	var records []record
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func TestRecordThenList(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	require.NoError(t, s.Record(ctx, Entry{Value: "CG20J5339", FinalNumber: 2, Date: clock.Now()}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CG20J5339", entries[0].Value)
	assert.Equal(t, 2, entries[0].FinalNumber)
	assert.Equal(t, clock.Now().UnixMilli(), entries[0].Date.UnixMilli())
}

func TestRecord_PersistedShape(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	require.NoError(t, s.Record(ctx, Entry{Value: "ka01", FinalNumber: 4, Date: clock.Now()}))

	want := fmt.Sprintf(`[{"value":"ka01","finalNumber":4,"date":%d}]`, clock.Now().UnixMilli())
	assert.JSONEq(t, want, kv.data[Key])
}

func TestRecord_NoDeduplication(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(ctx, Entry{Value: "KA01AB1234", FinalNumber: 9, Date: clock.Now()}))
		clock.Advance(time.Minute)
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Oldest first
	assert.True(t, entries[0].Date.Before(entries[1].Date))
	assert.True(t, entries[1].Date.Before(entries[2].Date))
}

func TestList_Empty(t *testing.T) {
	s, _, _ := newTestStore(t)
	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestList_PrunesExpiredAndPersists(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	old := clock.Now()
	require.NoError(t, s.Record(ctx, Entry{Value: "OLD1", FinalNumber: 1, Date: old}))
	clock.Advance(10 * 24 * time.Hour)
	require.NoError(t, s.Record(ctx, Entry{Value: "NEW1", FinalNumber: 2, Date: clock.Now()}))
	require.Len(t, persisted(t, kv), 2)

	// 30 days after the first entry: exactly at the window edge it expires.
	clock.t = old.Add(DefaultRetention)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "NEW1", entries[0].Value)

	stored := persisted(t, kv)
	require.Len(t, stored, 1, "read must write back the pruned log")
	assert.Equal(t, "NEW1", stored[0].Value)
}

func TestList_KeepsEntryJustInsideWindow(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	require.NoError(t, s.Record(ctx, Entry{Value: "EDGE", FinalNumber: 3, Date: clock.Now()}))
	clock.Advance(DefaultRetention - time.Millisecond)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestList_CustomRetention(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	s := New(kv, WithClock(clock.Now), WithRetention(24*time.Hour), WithLogger(quietLogger()))
	assert.Equal(t, 24*time.Hour, s.Retention())

	require.NoError(t, s.Record(ctx, Entry{Value: "A1", FinalNumber: 2, Date: clock.Now()}))
	clock.Advance(25 * time.Hour)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_ReadsOriginalFormat(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	ms := clock.Now().Add(-time.Hour).UnixMilli()
	kv.data[Key] = fmt.Sprintf(`[{"value":"mh12de1433","finalNumber":7,"date":%d}]`, ms)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mh12de1433", entries[0].Value)
	assert.Equal(t, 7, entries[0].FinalNumber)
	assert.Equal(t, ms, entries[0].Date.UnixMilli())
}

func TestList_MalformedTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	kv.data[Key] = `{not json`

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, `[]`, kv.data[Key])

	require.NoError(t, s.Record(ctx, Entry{Value: "X", FinalNumber: 5, Date: clock.Now()}))
	assert.Len(t, persisted(t, kv), 1)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	for _, v := range []string{"A", "B", "C"} {
		require.NoError(t, s.Record(ctx, Entry{Value: v, FinalNumber: 1, Date: clock.Now()}))
		clock.Advance(time.Second)
	}

	require.NoError(t, s.Delete(ctx, 1))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Value)
	assert.Equal(t, "C", entries[1].Value)
}

func TestDelete_IndexesAfterPruning(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	require.NoError(t, s.Record(ctx, Entry{Value: "EXPIRED", FinalNumber: 1, Date: clock.Now()}))
	clock.Advance(20 * 24 * time.Hour)
	require.NoError(t, s.Record(ctx, Entry{Value: "KEEP", FinalNumber: 2, Date: clock.Now()}))
	require.NoError(t, s.Record(ctx, Entry{Value: "DROP", FinalNumber: 3, Date: clock.Now()}))
	clock.Advance(11 * 24 * time.Hour)

	// Index 1 refers to the pruned ordering [KEEP, DROP].
	require.NoError(t, s.Delete(ctx, 1))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "KEEP", entries[0].Value)
}

func TestDelete_OutOfRange(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	require.NoError(t, s.Record(ctx, Entry{Value: "A", FinalNumber: 1, Date: clock.Now()}))

	for _, idx := range []int{-1, 1, 100} {
		err := s.Delete(ctx, idx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrIndexOutOfRange), "index %d", idx)
	}
	assert.Len(t, persisted(t, kv), 1)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, kv, clock := newTestStore(t)

	require.NoError(t, s.Record(ctx, Entry{Value: "A", FinalNumber: 1, Date: clock.Now()}))
	require.NoError(t, s.Clear(ctx))

	_, ok := kv.data[Key]
	assert.False(t, ok)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	s := New(failingKV{err: errors.NewInternal(fmt.Errorf("disk full"))}, WithLogger(quietLogger()))

	_, err := s.List(ctx)
	assert.True(t, errors.Is(err, errors.ErrInternal))
	assert.Error(t, s.Record(ctx, Entry{Value: "A", FinalNumber: 1, Date: time.Now()}))
	assert.Error(t, s.Delete(ctx, 0))
	assert.Error(t, s.Clear(ctx))
}

func TestConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Record(ctx, Entry{Value: fmt.Sprintf("P%d", i), FinalNumber: 1, Date: clock.Now()})
		}(i)
	}
	wg.Wait()

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestSQLiteBacked(t *testing.T) {
	ctx := context.Background()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	clock := &fakeClock{t: time.Now()}
	s := New(db.NewKV(database), WithClock(clock.Now), WithLogger(quietLogger()))

	require.NoError(t, s.Record(ctx, Entry{Value: "CG20J5339", FinalNumber: 2, Date: clock.Now()}))
	require.NoError(t, s.Record(ctx, Entry{Value: "KA01AB1234", FinalNumber: 9, Date: clock.Now()}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, s.Delete(ctx, 0))
	entries, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "KA01AB1234", entries[0].Value)

	require.NoError(t, s.Clear(ctx))
	entries, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
