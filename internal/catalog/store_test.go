package catalog

import (
	"encoding/json/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
	"github.com/blueroomhub/blueroom-builder/internal/validation"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir, nil, validation.New()), dir
}

func testGame(slug, created string) *domain.Game {
	return &domain.Game{
		Slug:        slug,
		Title:       "Game " + slug,
		Difficulty:  domain.DifficultyMedium,
		Mechanisms:  []string{"logic-puzzles"},
		PlayersMin:  1,
		PlayersMax:  4,
		TimeMinutes: 45,
		Languages:   []string{"en"},
		Rating:      4.0,
		GuideSlug:   slug,
		CreatedDate: created,
	}
}

func testGuide(slug string) *domain.Guide {
	return &domain.Guide{
		Slug:       slug,
		Title:      "Guide " + slug,
		Difficulty: domain.DifficultyMedium,
		Rating:     4.0,
	}
}

func TestLoad_EmptyOnFirstRun(t *testing.T) {
	store, _ := newTestStore(t)

	games, guides, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Empty(t, guides)
}

func TestUpsert_NewSlugAppends(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), testGuide("alpha")))
	require.NoError(t, store.Upsert(testGame("beta", "2024-02-01"), testGuide("beta")))

	games, guides, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, games, 2)
	assert.Len(t, guides, 2)
	assert.Equal(t, "alpha", games[0].Slug)
	assert.Equal(t, "beta", games[1].Slug)
}

func TestUpsert_ExistingSlugReplacesInPlace(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), testGuide("alpha")))
	require.NoError(t, store.Upsert(testGame("beta", "2024-02-01"), testGuide("beta")))
	require.NoError(t, store.Upsert(testGame("gamma", "2024-03-01"), testGuide("gamma")))

	replacement := testGame("beta", "2024-02-01")
	replacement.Title = "Beta Redux"
	replacement.Rating = 4.9
	require.NoError(t, store.Upsert(replacement, testGuide("beta")))

	games, _, err := store.Load()
	require.NoError(t, err)
	require.Len(t, games, 3)

	// Replacement preserves the original position in the sequence.
	assert.Equal(t, "alpha", games[0].Slug)
	assert.Equal(t, "beta", games[1].Slug)
	assert.Equal(t, "gamma", games[2].Slug)
	assert.Equal(t, "Beta Redux", games[1].Title)
	assert.Equal(t, 4.9, games[1].Rating)
}

func TestUpsert_DoubleUpsertKeepsSecondTitle(t *testing.T) {
	store, _ := newTestStore(t)

	first := testGame("alpha", "2024-01-01")
	first.Title = "First Title"
	require.NoError(t, store.Upsert(first, testGuide("alpha")))

	second := testGame("alpha", "2024-01-01")
	second.Title = "Second Title"
	require.NoError(t, store.Upsert(second, testGuide("alpha")))

	games, _, err := store.Load()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Second Title", games[0].Title)
}

func TestUpsert_RoundTripFieldEquality(t *testing.T) {
	store, _ := newTestStore(t)

	game := testGame("alpha", "2024-01-01")
	game.Pv7Norm = 0.7
	game.GuideClicks7Norm = 0.2
	require.NoError(t, store.Upsert(game, testGuide("alpha")))

	stored, err := store.GameBySlug("alpha")
	require.NoError(t, err)

	// Field-equal to the input except recency, which is recomputed.
	expected := *game
	expected.Recency = stored.Recency
	assert.Equal(t, expected, *stored)
	assert.Equal(t, 1.0, stored.Recency, "sole record gets recency 1.0")
}

func TestUpsert_RecomputesRecencyOverWholeCollection(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(testGame("oldest", "2024-01-01"), testGuide("oldest")))
	require.NoError(t, store.Upsert(testGame("newest", "2024-03-01"), testGuide("newest")))
	require.NoError(t, store.Upsert(testGame("middle", "2024-02-01"), testGuide("middle")))

	games, _, err := store.Load()
	require.NoError(t, err)
	require.Len(t, games, 3)

	assert.InDelta(t, 0.1, games[0].Recency, 1e-9)
	assert.InDelta(t, 1.0, games[1].Recency, 1e-9)
	assert.InDelta(t, 0.55, games[2].Recency, 1e-9)
}

func TestUpsert_ValidationFailureLeavesStateUntouched(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), testGuide("alpha")))

	bad := testGame("bad slug!", "2024-02-01")
	err := store.Upsert(bad, testGuide("bad-slug"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// Neither collection grew, in memory or on disk.
	games, guides, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Len(t, guides, 1)

	fresh := New(dir, nil, validation.New())
	games, guides, err = fresh.Load()
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Len(t, guides, 1)
}

func TestUpsert_InvalidGuideRejectsBothRecords(t *testing.T) {
	store, _ := newTestStore(t)

	guide := testGuide("alpha")
	guide.Rating = 9.0
	err := store.Upsert(testGame("alpha", "2024-01-01"), guide)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	games, guides, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Empty(t, guides)
}

func TestUpsert_PersistsArrayOfObjectsShape(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), testGuide("alpha")))

	data, err := os.ReadFile(filepath.Join(dir, GamesFile))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "alpha", raw[0]["slug"])
	assert.Contains(t, raw[0], "recency")

	recency, ok := raw[0]["recency"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, recency, 0.0)
	assert.LessOrEqual(t, recency, 1.0)
}

func TestLoad_ReturnedRecordsDoNotAliasStoreState(t *testing.T) {
	store, _ := newTestStore(t)

	guide := testGuide("alpha")
	guide.KeyChallenges = []string{"laser grid"}
	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), guide))

	games, guides, err := store.Load()
	require.NoError(t, err)

	// Mutating scalar and slice fields on the returned copies must leave the
	// store's snapshot untouched.
	games[0].Title = "scribbled over"
	games[0].Mechanisms[0] = "rewired"
	games[0].Languages = append(games[0].Languages, "de")
	guides[0].KeyChallenges[0] = "rewired"

	fresh, err := store.GameBySlug("alpha")
	require.NoError(t, err)
	assert.Equal(t, "Game alpha", fresh.Title)
	assert.Equal(t, []string{"logic-puzzles"}, fresh.Mechanisms)
	assert.Equal(t, []string{"en"}, fresh.Languages)

	freshGuide, err := store.GuideBySlug("alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"laser grid"}, freshGuide.KeyChallenges)
}

func TestGameBySlug(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), testGuide("alpha")))

	game, err := store.GameBySlug("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", game.Slug)

	_, err = store.GameBySlug("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGuideBySlug_DanglingReferenceIsNonFatal(t *testing.T) {
	store, _ := newTestStore(t)

	game := testGame("alpha", "2024-01-01")
	game.GuideSlug = "nowhere"
	require.NoError(t, store.Upsert(game, testGuide("alpha")))

	_, err := store.GuideBySlug("nowhere")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLoad_DuplicateSlugInFileRejected(t *testing.T) {
	dir := t.TempDir()
	games := []*domain.Game{testGame("dup", "2024-01-01"), testGame("dup", "2024-02-01")}
	data, err := json.Marshal(games)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, GamesFile), data, 0o644))

	store := New(dir, nil, validation.New())
	_, _, err = store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestLoad_CorruptFileIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, GamesFile), []byte("{not json"), 0o644))

	store := New(dir, nil, validation.New())
	_, _, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPersistence))
}

func TestReload_PicksUpExternalEdits(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Upsert(testGame("alpha", "2024-01-01"), testGuide("alpha")))

	// Another process rewrites the file.
	other := New(dir, nil, validation.New())
	require.NoError(t, other.Upsert(testGame("beta", "2024-02-01"), testGuide("beta")))

	require.NoError(t, store.Reload())
	games, err := store.Games()
	require.NoError(t, err)
	assert.Len(t, games, 2)
}
