// Package catalog owns the persisted games and guides collections.
//
// The store is the only writer of catalog state. An upsert is a single
// transition from one consistent (games, guides) snapshot to the next:
// validate, replace-or-append by slug, recompute recency over the whole games
// collection, then persist both files atomically. Readers never observe a
// half-written collection.
package catalog

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
	"github.com/blueroomhub/blueroom-builder/internal/ranking"
	"github.com/blueroomhub/blueroom-builder/internal/validation"
)

// Persisted collection file names, shared with the deployed site bundle.
const (
	GamesFile  = "games.json"
	GuidesFile = "guides.json"
)

// Store is a file-backed catalog over games.json and guides.json.
//
// All methods are safe for concurrent use; the mutex spans the whole
// read-modify-recalculate-write sequence so watch-mode rebuilds never see
// games updated with stale recency.
type Store struct {
	dataDir   string
	logger    *slog.Logger
	validator *validation.Validator

	mu       sync.RWMutex
	games    []*domain.Game
	guides   []*domain.Guide
	gameIdx  map[string]int
	guideIdx map[string]int
	loaded   bool
}

// New creates a store rooted at dataDir. No I/O happens until Load or the
// first Upsert.
func New(dataDir string, logger *slog.Logger, validator *validation.Validator) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		dataDir:   dataDir,
		logger:    logger,
		validator: validator,
	}
}

// Load reads both collections from disk and returns them.
// A missing file yields an empty collection (first run); any other read or
// decode failure is a persistence error. The returned slices are copies of
// the records, safe for the caller to mutate.
func (s *Store) Load() ([]*domain.Game, []*domain.Guide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, nil, err
	}
	return cloneGames(s.games), cloneGuides(s.guides), nil
}

// Games returns a snapshot of the games collection in insertion order,
// loading from disk if necessary.
func (s *Store) Games() ([]*domain.Game, error) {
	games, _, err := s.snapshot()
	return games, err
}

// Guides returns a snapshot of the guides collection in insertion order,
// loading from disk if necessary.
func (s *Store) Guides() ([]*domain.Guide, error) {
	_, guides, err := s.snapshot()
	return guides, err
}

// GameBySlug returns a copy of the game with the given slug.
func (s *Store) GameBySlug(slug string) (*domain.Game, error) {
	games, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, errors.NotFoundf("game %q not found", slug)
}

// GuideBySlug returns a copy of the guide with the given slug.
// A game's guide_slug pointing at no guide is the renderer's concern;
// callers should treat the not-found error as non-fatal.
func (s *Store) GuideBySlug(slug string) (*domain.Guide, error) {
	_, guides, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	for _, g := range guides {
		if g.Slug == slug {
			return g, nil
		}
	}
	return nil, errors.NotFoundf("guide %q not found", slug)
}

// Upsert inserts or replaces one game and its guide, keyed by slug.
//
// An existing slug is replaced whole-record, preserving its position in the
// sequence; a new slug is appended. Recency is then recomputed over the
// entire games collection and both files are persisted together: either both
// collections are updated and written, or neither is.
func (s *Store) Upsert(game *domain.Game, guide *domain.Guide) error {
	if game == nil || guide == nil {
		return errors.Validation("game and guide records are both required")
	}
	if s.validator != nil {
		if err := s.validator.Validate(game); err != nil {
			return errors.Wrapf(err, errors.CodeValidation, "invalid game %q", game.Slug)
		}
		if err := s.validator.Validate(guide); err != nil {
			return errors.Wrapf(err, errors.CodeValidation, "invalid guide %q", guide.Slug)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	// Work on clones so a failed persist leaves the in-memory snapshot
	// exactly as it was.
	games := cloneGames(s.games)
	guides := cloneGuides(s.guides)

	gameCopy := *game
	replacedGame := false
	if i, ok := s.gameIdx[game.Slug]; ok {
		games[i] = &gameCopy
		replacedGame = true
	} else {
		games = append(games, &gameCopy)
	}

	guideCopy := *guide
	replacedGuide := false
	if i, ok := s.guideIdx[guide.Slug]; ok {
		guides[i] = &guideCopy
		replacedGuide = true
	} else {
		guides = append(guides, &guideCopy)
	}

	ranking.RecalculateRecency(games)

	if err := s.persist(games, guides); err != nil {
		return err
	}

	s.games = games
	s.guides = guides
	s.reindex()

	s.logger.Info("catalog updated",
		"game", game.Slug,
		"replaced_game", replacedGame,
		"replaced_guide", replacedGuide,
		"games_total", len(games),
		"guides_total", len(guides),
	)

	return nil
}

// snapshot returns cloned views of both collections, loading if needed.
func (s *Store) snapshot() ([]*domain.Game, []*domain.Guide, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return cloneGames(s.games), cloneGuides(s.guides), nil
	}
	s.mu.RUnlock()
	return s.Load()
}

// loadLocked reads both files into memory. Caller holds the write lock.
func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}

	var games []*domain.Game
	if err := readCollection(filepath.Join(s.dataDir, GamesFile), &games); err != nil {
		return err
	}

	var guides []*domain.Guide
	if err := readCollection(filepath.Join(s.dataDir, GuidesFile), &guides); err != nil {
		return err
	}

	if err := checkUniqueSlugs(games, guides); err != nil {
		return err
	}

	s.games = games
	s.guides = guides
	s.reindex()
	s.loaded = true

	s.logger.Debug("catalog loaded", "games", len(games), "guides", len(guides))
	return nil
}

// Reload discards the in-memory snapshot and re-reads from disk.
// Used by watch mode after an external process touches the data files.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	return s.loadLocked()
}

// persist writes both collections to disk as one logical operation.
// Both payloads are staged as temp files before either rename, so a marshal
// or write failure leaves the previous snapshot fully intact.
func (s *Store) persist(games []*domain.Game, guides []*domain.Guide) error {
	gamesData, err := json.Marshal(games, jsontext.WithIndent("  "))
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "marshal games collection")
	}
	guidesData, err := json.Marshal(guides, jsontext.WithIndent("  "))
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "marshal guides collection")
	}

	gamesPath := filepath.Join(s.dataDir, GamesFile)
	guidesPath := filepath.Join(s.dataDir, GuidesFile)

	gamesTmp, err := stageFile(gamesPath, gamesData)
	if err != nil {
		return err
	}
	guidesTmp, err := stageFile(guidesPath, guidesData)
	if err != nil {
		os.Remove(gamesTmp)
		return err
	}

	if err := os.Rename(gamesTmp, gamesPath); err != nil {
		os.Remove(gamesTmp)
		os.Remove(guidesTmp)
		return errors.Wrap(err, errors.CodePersistence, "replace games.json")
	}
	if err := os.Rename(guidesTmp, guidesPath); err != nil {
		os.Remove(guidesTmp)
		return errors.Wrap(err, errors.CodePersistence, "replace guides.json")
	}

	return nil
}

// reindex rebuilds the slug lookup maps after a collection change.
func (s *Store) reindex() {
	s.gameIdx = make(map[string]int, len(s.games))
	for i, g := range s.games {
		s.gameIdx[g.Slug] = i
	}
	s.guideIdx = make(map[string]int, len(s.guides))
	for i, g := range s.guides {
		s.guideIdx[g.Slug] = i
	}
}

// readCollection decodes a JSON array file into dest.
// A missing file leaves dest nil: the catalog starts empty on first run.
func readCollection(path string, dest any) error {
	data, err := os.ReadFile(path) //#nosec G304 -- catalog paths come from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.CodePersistence, "read %s", filepath.Base(path))
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "decode %s", filepath.Base(path))
	}
	return nil
}

// checkUniqueSlugs guards against hand-edited data files introducing
// duplicate keys.
func checkUniqueSlugs(games []*domain.Game, guides []*domain.Guide) error {
	seen := make(map[string]bool, len(games))
	for _, g := range games {
		if seen[g.Slug] {
			return errors.Validationf("duplicate game slug %q in games.json", g.Slug)
		}
		seen[g.Slug] = true
	}
	seen = make(map[string]bool, len(guides))
	for _, g := range guides {
		if seen[g.Slug] {
			return errors.Validationf("duplicate guide slug %q in guides.json", g.Slug)
		}
		seen[g.Slug] = true
	}
	return nil
}

// stageFile writes data to a temp file next to path and returns its name.
func stageFile(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", errors.Wrapf(err, errors.CodePersistence, "stage %s", filepath.Base(path))
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, errors.CodePersistence, "stage %s", filepath.Base(path))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, errors.CodePersistence, "stage %s", filepath.Base(path))
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, errors.CodePersistence, "stage %s", filepath.Base(path))
	}
	return tmp.Name(), nil
}

// cloneGames deep-copies the collection, slice fields included, so callers
// can mutate returned records without aliasing store state.
func cloneGames(in []*domain.Game) []*domain.Game {
	out := make([]*domain.Game, len(in))
	for i, g := range in {
		c := *g
		c.Mechanisms = slices.Clone(g.Mechanisms)
		c.Categories = slices.Clone(g.Categories)
		c.Languages = slices.Clone(g.Languages)
		out[i] = &c
	}
	return out
}

func cloneGuides(in []*domain.Guide) []*domain.Guide {
	out := make([]*domain.Guide, len(in))
	for i, g := range in {
		c := *g
		c.Mechanisms = slices.Clone(g.Mechanisms)
		c.SummarySteps = slices.Clone(g.SummarySteps)
		c.KeyChallenges = slices.Clone(g.KeyChallenges)
		c.FAQ = slices.Clone(g.FAQ)
		out[i] = &c
	}
	return out
}
