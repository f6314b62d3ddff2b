package site

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueroomhub/blueroom-builder/internal/catalog"
	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/render"
	"github.com/blueroomhub/blueroom-builder/internal/validation"
)

func testConfig(t *testing.T, pageSize int) *config.Config {
	t.Helper()
	return &config.Config{
		Data:   config.DataConfig{Dir: t.TempDir()},
		Output: config.OutputConfig{Dir: t.TempDir()},
		Site: config.SiteConfig{
			Name:        "Blue Room Games Hub",
			BaseURL:     "https://www.blueroomgameshub.com",
			Description: "Curated escape rooms.",
			PageSize:    pageSize,
			StaticPages: []string{"about", "privacy-policy"},
		},
	}
}

func builderGame(slug, created string, rating float64) *domain.Game {
	return &domain.Game{
		Slug:        slug,
		Title:       "Game " + slug,
		Summary:     "Summary for " + slug,
		Difficulty:  domain.DifficultyMedium,
		Mechanisms:  []string{"logic-puzzles"},
		Categories:  []string{"mystery"},
		PlayersMin:  2,
		PlayersMax:  5,
		TimeMinutes: 50,
		Languages:   []string{"en"},
		Rating:      rating,
		PlayURL:     "https://play.example.com/" + slug,
		GuideSlug:   slug,
		CreatedDate: created,
	}
}

func builderGuide(slug string) *domain.Guide {
	return &domain.Guide{
		Slug:            slug,
		Title:           "Guide " + slug,
		Difficulty:      domain.DifficultyMedium,
		Rating:          4.0,
		MetaDescription: "Route notes for " + slug,
	}
}

func newTestBuilder(t *testing.T, cfg *config.Config) (*Builder, *catalog.Store) {
	t.Helper()
	store := catalog.New(cfg.Data.Dir, nil, validation.New())
	renderer, err := render.New(cfg.Site)
	require.NoError(t, err)
	return NewBuilder(cfg, store, nil, nil, renderer, nil, nil), store
}

func TestBuild_FullPageSet(t *testing.T) {
	cfg := testConfig(t, 24)
	builder, store := newTestBuilder(t, cfg)

	require.NoError(t, store.Upsert(builderGame("alpha", "2024-01-01", 4.0), builderGuide("alpha")))
	require.NoError(t, store.Upsert(builderGame("beta", "2024-02-01", 4.5), builderGuide("beta")))

	require.NoError(t, builder.Build())

	for _, path := range []string{
		"index.html",
		"games/index.html",
		"games/alpha/index.html",
		"games/beta/index.html",
		"guides/index.html",
		"guides/alpha/index.html",
		"guides/beta/index.html",
		"about/index.html",
		"privacy-policy/index.html",
		"robots.txt",
		"sitemap.xml",
	} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, path))
		assert.NoError(t, err, path)
	}
}

func TestBuild_Pagination(t *testing.T) {
	cfg := testConfig(t, 2)
	builder, store := newTestBuilder(t, cfg)

	for i := 1; i <= 5; i++ {
		slug := "game-" + strconv.Itoa(i)
		require.NoError(t, store.Upsert(builderGame(slug, "2024-01-0"+strconv.Itoa(i), 4.0), builderGuide(slug)))
	}

	require.NoError(t, builder.Build())

	_, err := os.Stat(filepath.Join(cfg.Output.Dir, "games", "page", "2", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "games", "page", "3", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "games", "page", "4", "index.html"))
	assert.True(t, os.IsNotExist(err), "only 3 pages for 5 games at size 2")

	sitemap, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(sitemap), "/games/page/2/")
	assert.Contains(t, string(sitemap), "/games/page/3/")
}

func TestRebuild_PicksUpExternalEdits(t *testing.T) {
	cfg := testConfig(t, 24)
	builder, store := newTestBuilder(t, cfg)

	require.NoError(t, store.Upsert(builderGame("alpha", "2024-01-01", 4.0), builderGuide("alpha")))
	require.NoError(t, builder.Build())

	// Another process (the ingest CLI) rewrites the data files behind the
	// long-lived store's back.
	external := catalog.New(cfg.Data.Dir, nil, validation.New())
	require.NoError(t, external.Upsert(builderGame("beta", "2024-02-01", 4.5), builderGuide("beta")))

	require.NoError(t, builder.Rebuild())

	_, err := os.Stat(filepath.Join(cfg.Output.Dir, "games", "beta", "index.html"))
	assert.NoError(t, err, "watch-triggered rebuild must render records added on disk")

	home, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), "Game beta")
}

func TestBuild_EmptyCatalog(t *testing.T) {
	cfg := testConfig(t, 24)
	builder, _ := newTestBuilder(t, cfg)

	require.NoError(t, builder.Build())

	// The listing page still exists, just with zero cards.
	_, err := os.Stat(filepath.Join(cfg.Output.Dir, "games", "index.html"))
	assert.NoError(t, err)
}

func TestBuild_DanglingGuideSlug(t *testing.T) {
	cfg := testConfig(t, 24)
	builder, store := newTestBuilder(t, cfg)

	game := builderGame("alpha", "2024-01-01", 4.0)
	game.GuideSlug = "nowhere"
	require.NoError(t, store.Upsert(game, builderGuide("alpha")))

	require.NoError(t, builder.Build())

	detail, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "games", "alpha", "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(detail), "Open the guide")
}

func TestRelatedGames(t *testing.T) {
	target := builderGame("target", "2024-01-01", 4.0)
	target.Mechanisms = []string{"ciphers"}
	target.Difficulty = domain.DifficultyInsane

	sharesMechanism := builderGame("shares-mechanism", "2024-01-02", 4.0)
	sharesMechanism.Mechanisms = []string{"ciphers"}
	sharesMechanism.Recency = 1.0

	sameDifficulty := builderGame("same-difficulty", "2024-01-03", 4.0)
	sameDifficulty.Mechanisms = []string{"riddles"}
	sameDifficulty.Difficulty = domain.DifficultyInsane
	sameDifficulty.Recency = 0.5

	unrelated := builderGame("unrelated", "2024-01-04", 4.0)
	unrelated.Mechanisms = []string{"riddles"}

	all := []*domain.Game{target, sharesMechanism, sameDifficulty, unrelated}
	related := relatedGames(target, all)

	require.Len(t, related, 3)
	// Matching games come first, trending-ordered; the unrelated one backfills.
	assert.Equal(t, "shares-mechanism", related[0].Slug)
	assert.Equal(t, "same-difficulty", related[1].Slug)
	assert.Equal(t, "unrelated", related[2].Slug)
}

func TestRelatedGames_ExcludesSelfAndCapsLimit(t *testing.T) {
	var all []*domain.Game
	for i := 0; i < 10; i++ {
		all = append(all, builderGame("game-"+strconv.Itoa(i), "2024-01-01", 4.0))
	}

	related := relatedGames(all[0], all)
	assert.Len(t, related, relatedGamesLimit)
	for _, g := range related {
		assert.NotEqual(t, all[0].Slug, g.Slug)
	}
}

func TestCollectFacets(t *testing.T) {
	games := []*domain.Game{
		{Categories: []string{"horror", "heist"}, Mechanisms: []string{"ciphers"}, Languages: []string{"en"}},
		{Categories: []string{"heist"}, Mechanisms: []string{"riddles"}, Languages: []string{"de", "en"}},
	}

	facets := collectFacets(games)
	assert.Equal(t, []string{"heist", "horror"}, facets.Categories)
	assert.Equal(t, []string{"ciphers", "riddles"}, facets.Mechanisms)
	assert.Equal(t, []string{"de", "en"}, facets.Languages)
	assert.Len(t, facets.Difficulties, 4)
}

func TestLatestCreatedDate(t *testing.T) {
	games := []*domain.Game{
		{CreatedDate: "2024-01-01"},
		{CreatedDate: "2024-03-01"},
		{CreatedDate: "2024-02-01"},
	}
	assert.Equal(t, "2024-03-01", latestCreatedDate(games))
	assert.Equal(t, "", latestCreatedDate(nil))
}
