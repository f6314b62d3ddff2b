// Package ingest adds or replaces one game and its companion guide in the
// catalog. Content acquisition (scraping, summarization) lives outside this
// repo; a Provider hands over fully-formed records and the Ingestor takes it
// from there.
package ingest

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"os"
	"time"

	"github.com/blueroomhub/blueroom-builder/internal/catalog"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
	"github.com/blueroomhub/blueroom-builder/internal/id"
	"github.com/blueroomhub/blueroom-builder/internal/util"
)

// Provider supplies one fully-formed game + guide pair per call.
type Provider interface {
	Fetch(ctx context.Context) (*domain.Game, *domain.Guide, error)
}

// Rebuilder regenerates the published site after a catalog change.
type Rebuilder interface {
	Build() error
}

// FileProvider reads a game/guide pair from two JSON documents on disk,
// matching the handoff format of the external scraper pipeline.
type FileProvider struct {
	GamePath  string
	GuidePath string
}

// Fetch implements Provider.
func (p *FileProvider) Fetch(_ context.Context) (*domain.Game, *domain.Guide, error) {
	var game domain.Game
	if err := readJSON(p.GamePath, &game); err != nil {
		return nil, nil, err
	}
	var guide domain.Guide
	if err := readJSON(p.GuidePath, &guide); err != nil {
		return nil, nil, err
	}
	return &game, &guide, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //#nosec G304 -- Input path comes from the operator
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, errors.CodeValidation, "parse %s", path)
	}
	return nil
}

// Ingestor validates and upserts provided records into the catalog.
type Ingestor struct {
	store   *catalog.Store
	rebuild Rebuilder
	logger  *slog.Logger
}

// New creates an Ingestor. rebuild may be nil when the caller does not want
// the site regenerated after each upsert.
func New(store *catalog.Store, rebuild Rebuilder, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingestor{store: store, rebuild: rebuild, logger: logger}
}

// Run fetches one pair from the provider and upserts it. Returns the run id
// used to correlate log lines.
func (i *Ingestor) Run(ctx context.Context, provider Provider) (string, error) {
	runID, err := id.Generate("ing")
	if err != nil {
		return "", err
	}
	logger := i.logger.With("run_id", runID)
	start := time.Now()

	game, guide, err := provider.Fetch(ctx)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		return runID, err
	}

	fillSlugs(game, guide)

	if err := i.store.Upsert(game, guide); err != nil {
		logger.Error("upsert failed", "slug", game.Slug, "error", err)
		return runID, err
	}
	logger.Info("catalog updated", "slug", game.Slug, "title", game.Title)

	if i.rebuild != nil {
		if err := i.rebuild.Build(); err != nil {
			logger.Error("rebuild failed", "error", err)
			return runID, err
		}
		logger.Info("site rebuilt", "duration", time.Since(start).Round(time.Millisecond))
	}

	return runID, nil
}

// fillSlugs derives missing slugs from titles. The scraper usually provides
// them, but hand-written documents often leave them out.
func fillSlugs(game *domain.Game, guide *domain.Guide) {
	if game.Slug == "" {
		game.Slug = util.Slugify(game.Title)
	}
	if guide.Slug == "" {
		guide.Slug = game.Slug
	}
	if game.GuideSlug == "" {
		game.GuideSlug = guide.Slug
	}
}
