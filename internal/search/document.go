// Package search provides the site's full-text index using Bleve.
// Games and guides are indexed together at build time; the preview server
// exposes the index through /api/search.
package search

import (
	"github.com/blueroomhub/blueroom-builder/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeGame  DocType = "game"
	DocTypeGuide DocType = "guide"
)

// Document is the unified structure for the Bleve index. Both catalog
// entities are indexed as Documents with type discrimination so one query
// covers the whole site.
type Document struct {
	ID          string   `json:"id"` // "<type>:<slug>"
	Type        DocType  `json:"type"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Difficulty  string   `json:"difficulty"`
	Mechanisms  []string `json:"mechanisms"`
	Categories  []string `json:"categories"`
	Languages   []string `json:"languages"`
	Rating      float64  `json:"rating"`
	TimeMinutes int      `json:"time_minutes"`
	URL         string   `json:"url"`
}

// FromGame converts a catalog game into an index document.
func FromGame(g *domain.Game) *Document {
	return &Document{
		ID:          string(DocTypeGame) + ":" + g.Slug,
		Type:        DocTypeGame,
		Slug:        g.Slug,
		Title:       g.Title,
		Summary:     g.Summary,
		Difficulty:  g.Difficulty,
		Mechanisms:  g.Mechanisms,
		Categories:  g.Categories,
		Languages:   g.Languages,
		Rating:      g.Rating,
		TimeMinutes: g.TimeMinutes,
		URL:         "/games/" + g.Slug + "/",
	}
}

// FromGuide converts a walkthrough guide into an index document.
// Step titles and challenges are folded into the summary text so tactical
// vocabulary ("pressure plate", "cipher wheel") is searchable.
func FromGuide(g *domain.Guide) *Document {
	summary := g.MetaDescription
	for _, step := range g.SummarySteps {
		summary += " " + step.Title
	}
	for _, challenge := range g.KeyChallenges {
		summary += " " + challenge
	}

	return &Document{
		ID:         string(DocTypeGuide) + ":" + g.Slug,
		Type:       DocTypeGuide,
		Slug:       g.Slug,
		Title:      g.Title,
		Summary:    summary,
		Difficulty: g.Difficulty,
		Mechanisms: g.Mechanisms,
		Rating:     g.Rating,
		URL:        "/guides/" + g.Slug + "/",
	}
}

// ToMap converts the document to a map so indexed field names match the
// mapping exactly.
func (d *Document) ToMap() map[string]any {
	return map[string]any{
		"id":           d.ID,
		"type":         string(d.Type),
		"slug":         d.Slug,
		"title":        d.Title,
		"summary":      d.Summary,
		"difficulty":   d.Difficulty,
		"mechanisms":   d.Mechanisms,
		"categories":   d.Categories,
		"languages":    d.Languages,
		"rating":       d.Rating,
		"time_minutes": d.TimeMinutes,
		"url":          d.URL,
	}
}
