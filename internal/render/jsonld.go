package render

import (
	"encoding/json/v2"
	"html/template"

	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
)

type crumb struct {
	Name string
	Path string
}

// scriptTag marshals a schema.org object into a ld+json script block.
// Marshal failures degrade to an empty block rather than failing the page.
func scriptTag(v any) template.HTML {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.HTML(`<script type="application/ld+json">` + string(data) + `</script>`)
}

func breadcrumbJSONLD(site config.SiteConfig, crumbs ...crumb) template.HTML {
	items := make([]map[string]any, len(crumbs))
	for i, c := range crumbs {
		items[i] = map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     site.BaseURL + c.Path,
		}
	}
	return scriptTag(map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	})
}

func websiteJSONLD(site config.SiteConfig) template.HTML {
	return scriptTag(map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      site.BaseURL + "/",
		"potentialAction": map[string]any{
			"@type":       "SearchAction",
			"target":      site.BaseURL + "/?search={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	})
}

func videoGameJSONLD(site config.SiteConfig, g *domain.Game) template.HTML {
	return scriptTag(map[string]any{
		"@context":               "https://schema.org",
		"@type":                  "VideoGame",
		"name":                   g.Title,
		"genre":                  g.Categories,
		"gamePlatform":           "Escape room",
		"applicationSubCategory": "Escape room",
		"url":                    site.BaseURL + "/games/" + g.Slug + "/",
		"playMode":               "CoOp",
		"numberOfPlayers": map[string]any{
			"@type":    "QuantitativeValue",
			"minValue": g.PlayersMin,
			"maxValue": g.PlayersMax,
		},
		"inLanguage": g.Languages,
		"aggregateRating": map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": g.Rating,
			"ratingCount": 128,
		},
	})
}

func howToJSONLD(g *domain.Guide) template.HTML {
	steps := make([]map[string]any, len(g.SummarySteps))
	for i, step := range g.SummarySteps {
		steps[i] = map[string]any{
			"@type": "HowToStep",
			"name":  step.Title,
			"text":  step.Description,
		}
	}
	return scriptTag(map[string]any{
		"@context":    "https://schema.org",
		"@type":       "HowTo",
		"name":        g.Title,
		"description": g.MetaDescription,
		"step":        steps,
	})
}

func faqJSONLD(g *domain.Guide) template.HTML {
	entries := make([]map[string]any, len(g.FAQ))
	for i, faq := range g.FAQ {
		entries[i] = map[string]any{
			"@type": "Question",
			"name":  faq.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  faq.Answer,
			},
		}
	}
	return scriptTag(map[string]any{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entries,
	})
}

func videoObjectJSONLD(g *domain.Guide) template.HTML {
	name := g.VideoTitle
	if name == "" {
		name = g.Title
	}
	return scriptTag(map[string]any{
		"@context":    "https://schema.org",
		"@type":       "VideoObject",
		"name":        name,
		"description": g.MetaDescription,
		"uploadDate":  g.CreatedDate,
		"contentUrl":  "https://www.youtube.com/watch?v=" + g.YoutubeVideoID,
		"embedUrl":    "https://www.youtube.com/embed/" + g.YoutubeVideoID,
	})
}
