// Package domain contains the core catalog entities for the Blue Room games hub.
package domain

import (
	"fmt"
	"time"
)

// Difficulty levels for a game.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
	DifficultyInsane = "Insane"
)

// CreatedDateLayout is the persisted layout of created_date fields.
const CreatedDateLayout = "2006-01-02"

// Game represents an escape-room game in the catalog.
//
// Slug is the only identity: uniqueness is enforced per collection and an
// upsert with an existing slug replaces the whole record. The three normalized
// signals (Pv7Norm, GuideClicks7Norm, Recency) feed the trending score and are
// always kept in [0, 1]; Recency is recomputed over the entire collection after
// every structural change and never left stale.
type Game struct {
	Slug             string   `json:"slug" validate:"required,slug"`
	Title            string   `json:"title" validate:"required"`
	Summary          string   `json:"summary"`
	Difficulty       string   `json:"difficulty" validate:"required,oneof=Easy Medium Hard Insane"`
	Mechanisms       []string `json:"mechanisms" validate:"max=4"`
	Categories       []string `json:"categories"`
	PlayersMin       int      `json:"players_min" validate:"gte=1"`
	PlayersMax       int      `json:"players_max" validate:"gtefield=PlayersMin"`
	TimeMinutes      int      `json:"time_minutes" validate:"gt=0"`
	Languages        []string `json:"languages" validate:"required,min=1"`
	Rating           float64  `json:"rating" validate:"gte=0,lte=5"`
	PlayURL          string   `json:"play_url"`
	Thumbnail        string   `json:"thumbnail"`
	GuideSlug        string   `json:"guide_slug,omitempty"`
	Pv7Norm          float64  `json:"pv7_norm" validate:"gte=0,lte=1"`
	GuideClicks7Norm float64  `json:"guide_clicks7_norm" validate:"gte=0,lte=1"`
	Recency          float64  `json:"recency" validate:"gte=0,lte=1"`
	CreatedDate      string   `json:"created_date"`
	MetaDescription  string   `json:"meta_description"`
}

// CreatedAt parses the record's created date.
// Malformed or missing dates return the zero time, which sorts as oldest.
func (g *Game) CreatedAt() time.Time {
	t, err := time.Parse(CreatedDateLayout, g.CreatedDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// PlayerRange formats the supported team size, e.g. "2–6".
func (g *Game) PlayerRange() string {
	if g.PlayersMin == g.PlayersMax {
		return fmt.Sprintf("%d", g.PlayersMin)
	}
	return fmt.Sprintf("%d–%d", g.PlayersMin, g.PlayersMax)
}

// HasGuide reports whether the game references a companion guide.
func (g *Game) HasGuide() bool {
	return g.GuideSlug != ""
}

// SharesMechanism reports whether the two games have a mechanism in common.
// Used for related-game recommendations.
func (g *Game) SharesMechanism(other *Game) bool {
	for _, m := range g.Mechanisms {
		for _, o := range other.Mechanisms {
			if m == o {
				return true
			}
		}
	}
	return false
}
