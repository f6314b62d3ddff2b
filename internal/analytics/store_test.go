package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndSignals(t *testing.T) {
	store := openTestStore(t)

	for range 10 {
		require.NoError(t, store.RecordPageView("midnight-vault"))
	}
	for range 5 {
		require.NoError(t, store.RecordPageView("cursed-cellar"))
	}
	require.NoError(t, store.RecordGuideClick("midnight-vault"))

	signals, err := store.Signals()
	require.NoError(t, err)

	// Max-normalized: the busiest slug gets 1.0.
	assert.InDelta(t, 1.0, signals["midnight-vault"].Pv7Norm, 1e-9)
	assert.InDelta(t, 0.5, signals["cursed-cellar"].Pv7Norm, 1e-9)
	assert.InDelta(t, 1.0, signals["midnight-vault"].GuideClicks7Norm, 1e-9)
	assert.InDelta(t, 0.0, signals["cursed-cellar"].GuideClicks7Norm, 1e-9)
}

func TestSignals_EmptyStore(t *testing.T) {
	store := openTestStore(t)

	signals, err := store.Signals()
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestSignals_EventsOutsideWindowIgnored(t *testing.T) {
	store := openTestStore(t)

	// Record an event ten days ago by shifting the store's clock.
	store.now = func() time.Time { return time.Now().AddDate(0, 0, -10) }
	require.NoError(t, store.RecordPageView("stale-room"))

	store.now = time.Now
	require.NoError(t, store.RecordPageView("fresh-room"))

	signals, err := store.Signals()
	require.NoError(t, err)

	assert.NotContains(t, signals, "stale-room")
	assert.Contains(t, signals, "fresh-room")
}

func TestSignals_AccumulatesAcrossDays(t *testing.T) {
	store := openTestStore(t)

	base := time.Now()
	for day := 0; day < 3; day++ {
		d := day
		store.now = func() time.Time { return base.AddDate(0, 0, -d) }
		require.NoError(t, store.RecordPageView("multi-day"))
	}

	store.now = func() time.Time { return base }
	signals, err := store.Signals()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, signals["multi-day"].Pv7Norm, 1e-9)
}

func TestApply(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordPageView("alpha"))
	require.NoError(t, store.RecordGuideClick("alpha"))

	games := []*domain.Game{
		{Slug: "alpha", Pv7Norm: 0.2},
		{Slug: "beta", Pv7Norm: 0.9}, // stale value must be reset
	}
	guides := []*domain.Guide{
		{Slug: "alpha"},
		{Slug: "beta", Clicks7Norm: 0.5},
	}

	require.NoError(t, store.Apply(games, guides))

	assert.InDelta(t, 1.0, games[0].Pv7Norm, 1e-9)
	assert.InDelta(t, 0.0, games[1].Pv7Norm, 1e-9)
	assert.InDelta(t, 1.0, guides[0].Clicks7Norm, 1e-9)
	assert.InDelta(t, 0.0, guides[1].Clicks7Norm, 1e-9)
}

func TestRecordPageView_EmptySlug(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.RecordPageView(""))
}

func TestSplitCounterKey(t *testing.T) {
	slug, day, ok := splitCounterKey("pv:midnight-vault:20240301", "pv:")
	require.True(t, ok)
	assert.Equal(t, "midnight-vault", slug)
	assert.Equal(t, "20240301", day)

	_, _, ok = splitCounterKey("pv:noday", "pv:")
	assert.False(t, ok)
}
