package render

import (
	"html/template"

	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
)

// Page carries the metadata every rendered page needs: head tags, nav state,
// and prebuilt JSON-LD script blocks.
type Page struct {
	Site          config.SiteConfig
	Title         string
	Description   string
	CanonicalPath string
	Active        string
	JSONLD        []template.HTML
	Scripts       []string
	Year          int
}

// HomeData feeds the homepage tabs and featured walkthrough.
type HomeData struct {
	PageMeta      Page
	Trending      []*domain.Game
	Newest        []*domain.Game
	TopRated      []*domain.Game
	Featured      *domain.Game
	FeaturedGuide *domain.Guide
	TotalGames    int
	TotalGuides   int
	LastUpdated   string
}

// Facets holds the distinct filter values across the whole catalog.
type Facets struct {
	Categories   []string
	Mechanisms   []string
	Difficulties []string
	Languages    []string
}

// GamesPageData feeds one page of the games listing.
type GamesPageData struct {
	PageMeta   Page
	Games      []*domain.Game
	Facets     Facets
	PageNumber int
	TotalPages int
	TotalGames int
	PageSize   int
}

// GameDetailData feeds a game detail page. Guide and Related may be empty.
type GameDetailData struct {
	PageMeta Page
	Game     *domain.Game
	Guide    *domain.Guide
	Related  []*domain.Game
}

// GuideDetailData feeds a guide detail page. Game is nil when no game
// references the guide.
type GuideDetailData struct {
	PageMeta Page
	Guide    *domain.Guide
	Game     *domain.Game
	Related  []*domain.Guide
}

// GuidesData feeds the guides listing page.
type GuidesData struct {
	PageMeta Page
	Guides   []*domain.Guide
}

// SimplePageData feeds a static prose page.
type SimplePageData struct {
	PageMeta   Page
	Slug       string
	Title      string
	Heading    string
	Paragraphs []string
}
