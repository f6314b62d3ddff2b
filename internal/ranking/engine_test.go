package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
)

func game(slug, created string) *domain.Game {
	return &domain.Game{Slug: slug, CreatedDate: created}
}

func TestTrendingScore(t *testing.T) {
	g := &domain.Game{Pv7Norm: 0.5, GuideClicks7Norm: 0.5, Recency: 0.5}
	assert.InDelta(t, 0.5, TrendingScore(g), 1e-9)

	g = &domain.Game{Pv7Norm: 1.0, GuideClicks7Norm: 1.0, Recency: 1.0}
	assert.InDelta(t, 1.0, TrendingScore(g), 1e-9)

	// Missing signals contribute zero.
	assert.InDelta(t, 0.0, TrendingScore(&domain.Game{}), 1e-9)
	assert.InDelta(t, 0.7, TrendingScore(&domain.Game{Pv7Norm: 1.0}), 1e-9)
	assert.InDelta(t, 0.2, TrendingScore(&domain.Game{GuideClicks7Norm: 1.0}), 1e-9)
	assert.InDelta(t, 0.1, TrendingScore(&domain.Game{Recency: 1.0}), 1e-9)
}

func TestTrendingScore_Pure(t *testing.T) {
	g := &domain.Game{Pv7Norm: 0.31, GuideClicks7Norm: 0.77, Recency: 0.12}
	assert.Equal(t, TrendingScore(g), TrendingScore(g))
}

func TestTrendingScore_MonotonicInEachSignal(t *testing.T) {
	base := &domain.Game{Pv7Norm: 0.4, GuideClicks7Norm: 0.4, Recency: 0.4}
	baseScore := TrendingScore(base)

	bumpPv := *base
	bumpPv.Pv7Norm = 0.5
	assert.Greater(t, TrendingScore(&bumpPv), baseScore)

	bumpClicks := *base
	bumpClicks.GuideClicks7Norm = 0.5
	assert.Greater(t, TrendingScore(&bumpClicks), baseScore)

	bumpRecency := *base
	bumpRecency.Recency = 0.5
	assert.Greater(t, TrendingScore(&bumpRecency), baseScore)
}

func TestSortByTrending_StableOnTies(t *testing.T) {
	a := &domain.Game{Slug: "a", Pv7Norm: 0.5}
	b := &domain.Game{Slug: "b", Pv7Norm: 0.5}
	c := &domain.Game{Slug: "c", Pv7Norm: 0.9}

	games := []*domain.Game{a, b, c}
	SortByTrending(games)

	assert.Equal(t, []string{"c", "a", "b"}, slugs(games))
}

func TestRecalculateRecency_SingleGame(t *testing.T) {
	games := []*domain.Game{game("solo", "2024-01-01")}
	RecalculateRecency(games)
	assert.Equal(t, 1.0, games[0].Recency)
}

func TestRecalculateRecency_Empty(t *testing.T) {
	assert.NotPanics(t, func() { RecalculateRecency(nil) })
}

func TestRecalculateRecency_NewestAndOldestBounds(t *testing.T) {
	games := []*domain.Game{
		game("a", "2023-06-01"),
		game("b", "2024-06-01"),
		game("c", "2022-06-01"),
		game("d", "2024-01-01"),
	}
	RecalculateRecency(games)

	// Input order untouched; only recency assigned.
	assert.Equal(t, []string{"a", "b", "c", "d"}, slugs(games))
	assert.InDelta(t, 1.0, bySlug(games, "b").Recency, 1e-9)
	assert.InDelta(t, 0.1, bySlug(games, "c").Recency, 1e-9)
}

func TestRecalculateRecency_ThreeGameDecay(t *testing.T) {
	// created_date = 2024-01-01, 2024-03-01, 2024-02-01 → recency 0.1, 1.0, 0.55.
	games := []*domain.Game{
		game("oldest", "2024-01-01"),
		game("newest", "2024-03-01"),
		game("middle", "2024-02-01"),
	}
	RecalculateRecency(games)

	assert.InDelta(t, 0.1, games[0].Recency, 1e-9)
	assert.InDelta(t, 1.0, games[1].Recency, 1e-9)
	assert.InDelta(t, 0.55, games[2].Recency, 1e-9)
}

func TestRecalculateRecency_Idempotent(t *testing.T) {
	games := []*domain.Game{
		game("a", "2024-01-10"),
		game("b", "2024-02-20"),
		game("c", "2024-02-20"),
		game("d", "2023-12-01"),
	}
	RecalculateRecency(games)
	first := recencies(games)

	RecalculateRecency(games)
	assert.Equal(t, first, recencies(games))
}

func TestRecalculateRecency_StableOnEqualDates(t *testing.T) {
	games := []*domain.Game{
		game("first", "2024-05-05"),
		game("second", "2024-05-05"),
		game("third", "2024-05-05"),
	}
	RecalculateRecency(games)

	// With one shared date the stable sort keeps input order, so recency
	// decays in input order: first=1.0, second=0.55, third=0.1.
	assert.InDelta(t, 1.0, games[0].Recency, 1e-9)
	assert.InDelta(t, 0.55, games[1].Recency, 1e-9)
	assert.InDelta(t, 0.1, games[2].Recency, 1e-9)
}

func TestRecalculateRecency_MalformedDateSortsLast(t *testing.T) {
	games := []*domain.Game{
		game("broken", "01/02/2024"),
		game("ok", "2024-01-01"),
	}
	RecalculateRecency(games)

	assert.InDelta(t, 0.1, games[0].Recency, 1e-9)
	assert.InDelta(t, 1.0, games[1].Recency, 1e-9)
}

func slugs(games []*domain.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.Slug
	}
	return out
}

func recencies(games []*domain.Game) []float64 {
	out := make([]float64, len(games))
	for i, g := range games {
		out[i] = g.Recency
	}
	return out
}

func bySlug(games []*domain.Game, slug string) *domain.Game {
	for _, g := range games {
		if g.Slug == slug {
			return g
		}
	}
	return nil
}
