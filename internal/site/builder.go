// Package site orchestrates a full build: load the catalog, fold in
// engagement signals, render every page, refresh the search index, and
// process artwork thumbnails.
package site

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/blueroomhub/blueroom-builder/internal/analytics"
	"github.com/blueroomhub/blueroom-builder/internal/catalog"
	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
	"github.com/blueroomhub/blueroom-builder/internal/images"
	"github.com/blueroomhub/blueroom-builder/internal/ranking"
	"github.com/blueroomhub/blueroom-builder/internal/render"
	"github.com/blueroomhub/blueroom-builder/internal/search"
)

// homeTabSize is how many cards each homepage tab shows.
const homeTabSize = 12

// relatedLimit caps the recommendation strips.
const (
	relatedGamesLimit  = 6
	relatedGuidesLimit = 3
)

// Builder runs full site builds. Analytics, search, and thumbnails are
// optional collaborators; a nil field skips that stage.
type Builder struct {
	store     *catalog.Store
	counters  *analytics.Store
	index     *search.Index
	renderer  *render.Renderer
	thumbs    *images.Processor
	site      config.SiteConfig
	outputDir string
	logger    *slog.Logger
}

// NewBuilder wires a Builder from its collaborators.
func NewBuilder(cfg *config.Config, store *catalog.Store, counters *analytics.Store,
	index *search.Index, renderer *render.Renderer, thumbs *images.Processor,
	logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		store:     store,
		counters:  counters,
		index:     index,
		renderer:  renderer,
		thumbs:    thumbs,
		site:      cfg.Site,
		outputDir: cfg.Output.Dir,
		logger:    logger,
	}
}

// Rebuild re-reads the catalog from disk and then builds. Watch mode uses
// this instead of Build because the store caches both collections in memory
// and would otherwise keep rendering the snapshot from before the external
// edit.
func (b *Builder) Rebuild() error {
	if err := b.store.Reload(); err != nil {
		return err
	}
	return b.Build()
}

// Build renders the whole site into the output directory.
func (b *Builder) Build() error {
	start := time.Now()

	games, guides, err := b.store.Load()
	if err != nil {
		return err
	}

	if b.counters != nil {
		if err := b.counters.Apply(games, guides); err != nil {
			return err
		}
	}

	if b.thumbs != nil {
		slugs := make([]string, 0, len(games))
		for _, g := range games {
			slugs = append(slugs, g.Slug)
		}
		manifest, err := b.thumbs.ProcessAll(slugs, b.outputDir)
		if err != nil {
			return err
		}
		rthumbs := make(map[string]render.Thumb, len(manifest))
		for slug, t := range manifest {
			rthumbs[slug] = render.Thumb{URL: t.URL, BlurHash: t.BlurHash}
		}
		b.renderer.SetThumbs(rthumbs)
	}

	guidesBySlug := make(map[string]*domain.Guide, len(guides))
	for _, g := range guides {
		guidesBySlug[g.Slug] = g
	}

	if err := b.renderHome(games, guides, guidesBySlug); err != nil {
		return err
	}
	if err := b.renderGamesListing(games); err != nil {
		return err
	}
	if err := b.renderGameDetails(games, guidesBySlug); err != nil {
		return err
	}
	if err := b.renderGuides(games, guides); err != nil {
		return err
	}
	if err := b.renderStaticPages(); err != nil {
		return err
	}
	if err := b.writePage("robots.txt", b.renderer.Robots); err != nil {
		return err
	}
	if err := b.writePage("sitemap.xml", func(w io.Writer) error {
		return b.renderer.Sitemap(w, b.sitemapPaths(games, guides))
	}); err != nil {
		return err
	}

	if b.index != nil {
		if err := b.index.IndexCatalog(games, guides); err != nil {
			return err
		}
	}

	b.logger.Info("site build complete",
		"games", len(games),
		"guides", len(guides),
		"output", b.outputDir,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func (b *Builder) renderHome(games []*domain.Game, guides []*domain.Guide, guidesBySlug map[string]*domain.Guide) error {
	trending := trendingSorted(games)
	newest := slices.Clone(games)
	slices.SortStableFunc(newest, func(a, c *domain.Game) int {
		return c.CreatedAt().Compare(a.CreatedAt())
	})
	topRated := slices.Clone(games)
	slices.SortStableFunc(topRated, func(a, c *domain.Game) int {
		if c.Rating != a.Rating {
			if c.Rating > a.Rating {
				return 1
			}
			return -1
		}
		return 0
	})

	data := render.HomeData{
		Trending:    head(trending, homeTabSize),
		Newest:      head(newest, homeTabSize),
		TopRated:    head(topRated, homeTabSize),
		TotalGames:  len(games),
		TotalGuides: len(guides),
		LastUpdated: latestCreatedDate(games),
	}
	if len(trending) > 0 {
		data.Featured = trending[0]
		data.FeaturedGuide = guidesBySlug[trending[0].GuideSlug]
	}

	return b.writePage("index.html", func(w io.Writer) error {
		return b.renderer.Home(w, data)
	})
}

func (b *Builder) renderGamesListing(games []*domain.Game) error {
	sorted := trendingSorted(games)
	facets := collectFacets(games)
	pageSize := b.site.PageSize
	totalPages := (len(sorted) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	for page := 1; page <= totalPages; page++ {
		start := (page - 1) * pageSize
		end := min(start+pageSize, len(sorted))

		data := render.GamesPageData{
			Games:      sorted[start:end],
			Facets:     facets,
			PageNumber: page,
			TotalPages: totalPages,
			TotalGames: len(sorted),
			PageSize:   pageSize,
		}

		path := "games/index.html"
		if page > 1 {
			path = filepath.Join("games", "page", strconv.Itoa(page), "index.html")
		}
		if err := b.writePage(path, func(w io.Writer) error {
			return b.renderer.GamesPage(w, data)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) renderGameDetails(games []*domain.Game, guidesBySlug map[string]*domain.Guide) error {
	for _, game := range games {
		data := render.GameDetailData{
			Game:    game,
			Guide:   guidesBySlug[game.GuideSlug],
			Related: relatedGames(game, games),
		}
		path := filepath.Join("games", game.Slug, "index.html")
		if err := b.writePage(path, func(w io.Writer) error {
			return b.renderer.GameDetail(w, data)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) renderGuides(games []*domain.Game, guides []*domain.Guide) error {
	gamesByGuide := make(map[string]*domain.Game, len(games))
	for _, g := range games {
		if g.HasGuide() {
			gamesByGuide[g.GuideSlug] = g
		}
	}

	for _, guide := range guides {
		data := render.GuideDetailData{
			Guide:   guide,
			Game:    gamesByGuide[guide.Slug],
			Related: relatedGuides(guide, guides),
		}
		path := filepath.Join("guides", guide.Slug, "index.html")
		if err := b.writePage(path, func(w io.Writer) error {
			return b.renderer.GuideDetail(w, data)
		}); err != nil {
			return err
		}
	}

	return b.writePage("guides/index.html", func(w io.Writer) error {
		return b.renderer.GuidesIndex(w, render.GuidesData{Guides: guides})
	})
}

func (b *Builder) renderStaticPages() error {
	for _, slug := range b.site.StaticPages {
		data, ok := staticPageContent[slug]
		if !ok {
			b.logger.Warn("no content for configured static page", "slug", slug)
			continue
		}
		if err := b.writePage(filepath.Join(slug, "index.html"), func(w io.Writer) error {
			return b.renderer.SimplePage(w, data)
		}); err != nil {
			return err
		}
	}
	return nil
}

// sitemapPaths lists every published URL path.
func (b *Builder) sitemapPaths(games []*domain.Game, guides []*domain.Guide) []string {
	paths := []string{"/", "/games/", "/guides/"}
	for _, slug := range b.site.StaticPages {
		paths = append(paths, "/"+slug+"/")
	}
	for _, g := range games {
		paths = append(paths, "/games/"+g.Slug+"/")
	}
	totalPages := (len(games) + b.site.PageSize - 1) / b.site.PageSize
	for page := 2; page <= totalPages; page++ {
		paths = append(paths, "/games/page/"+strconv.Itoa(page)+"/")
	}
	for _, g := range guides {
		paths = append(paths, "/guides/"+g.Slug+"/")
	}
	return paths
}

// writePage creates the file under the output dir and streams the render
// into it.
func (b *Builder) writePage(relPath string, renderFn func(io.Writer) error) error {
	path := filepath.Join(b.outputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "create dir for %s", relPath)
	}

	file, err := os.Create(path) //#nosec G304 -- Output path derived from catalog slug
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "create %s", relPath)
	}
	defer file.Close()

	if err := renderFn(file); err != nil {
		return err
	}
	b.logger.Debug("wrote page", "path", relPath)
	return nil
}

// relatedGames recommends games sharing a mechanism or difficulty with the
// given one, trending-ordered and backfilled from the rest of the catalog.
func relatedGames(game *domain.Game, all []*domain.Game) []*domain.Game {
	var pool []*domain.Game
	for _, candidate := range all {
		if candidate.Slug == game.Slug {
			continue
		}
		if game.SharesMechanism(candidate) || candidate.Difficulty == game.Difficulty {
			pool = append(pool, candidate)
		}
	}
	ordered := trendingSorted(pool)

	if len(ordered) < relatedGamesLimit {
		seen := make(map[string]struct{}, len(ordered))
		for _, g := range ordered {
			seen[g.Slug] = struct{}{}
		}
		for _, fallback := range all {
			if len(ordered) >= relatedGamesLimit {
				break
			}
			if fallback.Slug == game.Slug {
				continue
			}
			if _, ok := seen[fallback.Slug]; ok {
				continue
			}
			ordered = append(ordered, fallback)
		}
	}
	return head(ordered, relatedGamesLimit)
}

// relatedGuides recommends guides sharing a mechanism or difficulty.
func relatedGuides(guide *domain.Guide, all []*domain.Guide) []*domain.Guide {
	var pool []*domain.Guide
	for _, candidate := range all {
		if candidate.Slug == guide.Slug {
			continue
		}
		if candidate.Difficulty == guide.Difficulty || sharesString(candidate.Mechanisms, guide.Mechanisms) {
			pool = append(pool, candidate)
		}
	}
	return head(pool, relatedGuidesLimit)
}

func trendingSorted(games []*domain.Game) []*domain.Game {
	sorted := slices.Clone(games)
	ranking.SortByTrending(sorted)
	return sorted
}

// collectFacets gathers the distinct filter values across the catalog.
func collectFacets(games []*domain.Game) render.Facets {
	categories := make(map[string]struct{})
	mechanisms := make(map[string]struct{})
	languages := make(map[string]struct{})
	for _, g := range games {
		for _, c := range g.Categories {
			categories[c] = struct{}{}
		}
		for _, m := range g.Mechanisms {
			mechanisms[m] = struct{}{}
		}
		for _, l := range g.Languages {
			languages[l] = struct{}{}
		}
	}
	return render.Facets{
		Categories: sortedKeys(categories),
		Mechanisms: sortedKeys(mechanisms),
		Difficulties: []string{
			domain.DifficultyEasy, domain.DifficultyMedium,
			domain.DifficultyHard, domain.DifficultyInsane,
		},
		Languages: sortedKeys(languages),
	}
}

func latestCreatedDate(games []*domain.Game) string {
	latest := ""
	for _, g := range games {
		if g.CreatedDate > latest {
			latest = g.CreatedDate
		}
	}
	return latest
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sharesString(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

