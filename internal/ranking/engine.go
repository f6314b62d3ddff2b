// Package ranking computes the derived ordering signals for the games catalog:
// the trending score used to sort listings and the recency decay recomputed
// whenever collection membership changes.
package ranking

import (
	"slices"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
)

// Trending score weights. The blend favors recent pageviews, with guide
// engagement and freshness as secondary signals.
const (
	weightPageviews   = 0.7
	weightGuideClicks = 0.2
	weightRecency     = 0.1
)

// Recency decay bounds: the newest record gets 1.0, the oldest 0.1.
const (
	recencyMax  = 1.0
	recencySpan = 0.9
)

// TrendingScore returns the weighted blend of a game's three normalized
// signals. Pure function of the record; never persisted. Zero-valued fields
// contribute nothing, so a record with missing signals still gets a total
// ordering.
func TrendingScore(g *domain.Game) float64 {
	return weightPageviews*g.Pv7Norm + weightGuideClicks*g.GuideClicks7Norm + weightRecency*g.Recency
}

// SortByTrending orders games by descending trending score, in place.
// The sort is stable: ties keep their input order, so repeated builds over
// the same data produce identical pages.
func SortByTrending(games []*domain.Game) {
	slices.SortStableFunc(games, func(a, b *domain.Game) int {
		sa, sb := TrendingScore(a), TrendingScore(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
}

// RecalculateRecency recomputes the recency signal for the whole collection.
//
// Games are ranked by created_date descending; a rank of i out of N maps to
// recency = 1.0 - (i/(N-1))*0.9, decaying linearly from 1.0 (newest) to 0.1
// (oldest). A single-element collection gets exactly 1.0. Records with a
// malformed or missing created_date parse to the zero time and therefore rank
// last. Ties keep their relative input order (stable sort on the date alone).
//
// Only the Recency field is mutated; the input slice order is untouched. The
// function is idempotent: rerunning it over its own output with unchanged
// dates yields identical values.
func RecalculateRecency(games []*domain.Game) {
	n := len(games)
	if n == 0 {
		return
	}
	if n == 1 {
		games[0].Recency = recencyMax
		return
	}

	ranked := make([]*domain.Game, n)
	copy(ranked, games)
	slices.SortStableFunc(ranked, func(a, b *domain.Game) int {
		// Descending by date; equal dates (including two unparseable ones)
		// compare as 0 so stability preserves input order.
		return b.CreatedAt().Compare(a.CreatedAt())
	})

	for i, g := range ranked {
		g.Recency = recencyMax - float64(i)/float64(n-1)*recencySpan
	}
}
