package manifest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := Record{
		BuildID:    "build-1",
		Started:    time.Now().Truncate(time.Second),
		Duration:   1500 * time.Millisecond,
		Outcome:    "success",
		Pages:      42,
		Hubs:       5,
		Assets:     120,
		Fuzzy:      3,
		Unresolved: 1,
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "build-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Pages, got.Pages)
	assert.Equal(t, rec.Outcome, got.Outcome)
	assert.Equal(t, rec.Duration, got.Duration)
	assert.Equal(t, rec.Started.Unix(), got.Started.Unix())
	assert.Equal(t, rec.Fuzzy, got.Fuzzy)
}

func TestGetUnknownBuild(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	assert.Error(t, err)
}

func TestLatestOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, Record{
			BuildID: "build-" + string(rune('a'+i)),
			Started: base.Add(time.Duration(i) * time.Minute),
			Outcome: "success",
		}))
	}

	records, err := store.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "build-c", records[0].BuildID)
	assert.Equal(t, "build-b", records[1].BuildID)
}

func TestDuplicateBuildIDRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, Record{BuildID: "dup", Started: time.Now(), Outcome: "success"}))
	assert.Error(t, store.Save(ctx, Record{BuildID: "dup", Started: time.Now(), Outcome: "success"}))
}
