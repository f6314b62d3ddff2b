package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
)

// mappingVersion tracks the index mapping schema. Bump it when the mapping
// changes so stale indexes are rebuilt instead of serving wrong results.
const mappingVersion = "1"

const versionFileName = "mapping.version"

// batchSize limits how many documents are queued per Bleve batch.
const batchSize = 500

// Index wraps a Bleve index over the catalog.
type Index struct {
	path   string
	index  bleve.Index
	logger *slog.Logger
}

// SearchParams configures a catalog search.
type SearchParams struct {
	Query      string
	Type       DocType // empty means both games and guides
	Difficulty string
	Limit      int
	Offset     int
}

// SearchResult is a page of search hits.
type SearchResult struct {
	Hits  []SearchHit `json:"hits"`
	Total uint64      `json:"total"`
}

// SearchHit is a single matching document with stored fields and fragments.
type SearchHit struct {
	ID        string              `json:"id"`
	Type      string              `json:"type"`
	Slug      string              `json:"slug"`
	Title     string              `json:"title"`
	URL       string              `json:"url"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Open opens the index at path, creating or rebuilding it when the stored
// mapping version does not match the current schema.
func Open(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if staleVersion(path) {
		logger.Info("search index mapping changed, rebuilding", "path", path)
		if err := os.RemoveAll(path); err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "remove stale search index")
		}
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err == nil {
			err = writeVersion(path)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "open search index")
	}

	return &Index{path: path, index: idx, logger: logger}, nil
}

// Close closes the underlying Bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexCatalog replaces the index contents with the given games and guides.
// Existing documents whose slug is gone from the catalog are removed.
func (i *Index) IndexCatalog(games []*domain.Game, guides []*domain.Guide) error {
	docs := make([]*Document, 0, len(games)+len(guides))
	for _, g := range games {
		docs = append(docs, FromGame(g))
	}
	for _, g := range guides {
		docs = append(docs, FromGuide(g))
	}

	wanted := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		wanted[d.ID] = struct{}{}
	}
	if err := i.deleteOrphans(wanted); err != nil {
		return err
	}

	batch := i.index.NewBatch()
	for _, d := range docs {
		if err := batch.Index(d.ID, d.ToMap()); err != nil {
			return errors.Wrapf(err, errors.CodeInternal, "batch document %s", d.ID)
		}
		if batch.Size() >= batchSize {
			if err := i.index.Batch(batch); err != nil {
				return errors.Wrap(err, errors.CodePersistence, "flush index batch")
			}
			batch = i.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := i.index.Batch(batch); err != nil {
			return errors.Wrap(err, errors.CodePersistence, "flush index batch")
		}
	}

	i.logger.Info("search index rebuilt", "games", len(games), "guides", len(guides))
	return nil
}

// Search runs a full-text query with optional type and difficulty filters.
func (i *Index) Search(params SearchParams) (*SearchResult, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	req := bleve.NewSearchRequestOptions(i.buildQuery(params), limit, params.Offset, false)
	req.Fields = []string{"type", "slug", "title", "url"}
	req.Highlight = bleve.NewHighlight()

	res, err := i.index.Search(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "execute search")
	}

	result := &SearchResult{
		Hits:  make([]SearchHit, 0, len(res.Hits)),
		Total: res.Total,
	}
	for _, hit := range res.Hits {
		result.Hits = append(result.Hits, SearchHit{
			ID:        hit.ID,
			Type:      stringField(hit.Fields, "type"),
			Slug:      stringField(hit.Fields, "slug"),
			Title:     stringField(hit.Fields, "title"),
			URL:       stringField(hit.Fields, "url"),
			Score:     hit.Score,
			Fragments: hit.Fragments,
		})
	}
	return result, nil
}

// buildQuery combines a boosted title match, a summary match, and a fuzzy
// fallback for typo tolerance, intersected with any active filters.
func (i *Index) buildQuery(params SearchParams) query.Query {
	var base query.Query
	q := strings.TrimSpace(params.Query)
	if q == "" {
		base = bleve.NewMatchAllQuery()
	} else {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		summaryMatch := bleve.NewMatchQuery(q)
		summaryMatch.SetField("summary")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)

		base = bleve.NewDisjunctionQuery(titleMatch, summaryMatch, fuzzy)
	}

	filters := []query.Query{base}
	if params.Type != "" {
		tq := bleve.NewTermQuery(string(params.Type))
		tq.SetField("type")
		filters = append(filters, tq)
	}
	if params.Difficulty != "" {
		dq := bleve.NewTermQuery(params.Difficulty)
		dq.SetField("difficulty")
		filters = append(filters, dq)
	}
	if len(filters) == 1 {
		return base
	}
	return bleve.NewConjunctionQuery(filters...)
}

// deleteOrphans removes documents no longer present in the catalog.
func (i *Index) deleteOrphans(wanted map[string]struct{}) error {
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 10000, 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "list indexed documents")
	}

	for _, hit := range res.Hits {
		if _, ok := wanted[hit.ID]; ok {
			continue
		}
		if err := i.index.Delete(hit.ID); err != nil {
			return errors.Wrapf(err, errors.CodePersistence, "delete orphan %s", hit.ID)
		}
	}
	return nil
}

func staleVersion(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	data, err := os.ReadFile(filepath.Join(path, versionFileName))
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(data)) != mappingVersion
}

func writeVersion(path string) error {
	return os.WriteFile(filepath.Join(path, versionFileName), []byte(mappingVersion), 0o644)
}

func stringField(fields map[string]any, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}
