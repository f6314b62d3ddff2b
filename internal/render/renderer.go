// Package render turns the catalog into the published page set. Templates are
// embedded so the builder ships as a single binary.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageNames are the content templates, each paired with base + partials.
var pageNames = []string{"home", "games", "game", "guide", "guides", "page"}

// Thumb is a processed thumbnail the renderer prefers over the record's
// original artwork URL when one exists.
type Thumb struct {
	URL      string
	BlurHash string
}

// Renderer renders catalog pages against the embedded template set.
type Renderer struct {
	site      config.SiteConfig
	templates map[string]*template.Template
	thumbs    map[string]Thumb
}

// New parses the embedded templates for the given site.
func New(site config.SiteConfig) (*Renderer, error) {
	r := &Renderer{
		site:      site,
		templates: make(map[string]*template.Template, len(pageNames)),
		thumbs:    make(map[string]Thumb),
	}

	funcs := template.FuncMap{
		"join":       strings.Join,
		"formatDate": formatDate,
		"langLabel":  langLabel,
		"langLabels": langLabels,
		"pages":      pageSeq,
		"pagePath":   listingPagePath,
		"thumb":      r.thumbURL,
		"blurhash":   r.blurHash,
	}

	for _, name := range pageNames {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templatesFS,
			"templates/base.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "parse %s templates", name)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// SetThumbs installs the processed-thumbnail manifest. Slugs without an entry
// fall back to the record's thumbnail URL.
func (r *Renderer) SetThumbs(thumbs map[string]Thumb) {
	if thumbs == nil {
		thumbs = make(map[string]Thumb)
	}
	r.thumbs = thumbs
}

// Home renders the homepage.
func (r *Renderer) Home(w io.Writer, data HomeData) error {
	data.PageMeta = r.page(
		r.site.Name+" | Escape Room Walkthroughs & Strategy",
		r.site.Description,
		"/", "/",
	)
	data.PageMeta.Scripts = []string{"/assets/js/home.js"}
	data.PageMeta.JSONLD = []template.HTML{
		websiteJSONLD(r.site),
		breadcrumbJSONLD(r.site, crumb{"Home", "/"}),
	}
	return r.execute(w, "home", &data)
}

// GamesPage renders one page of the games listing.
func (r *Renderer) GamesPage(w io.Writer, data GamesPageData) error {
	canonical := "/games/"
	if data.PageNumber > 1 {
		canonical = listingPagePath(data.PageNumber)
	}
	data.PageMeta = r.page(
		"Escape Room Games Library | "+r.site.Name,
		"Filter escape room games by mechanics, difficulty, team size, and recency. Ranked lists update with live engagement metrics.",
		canonical, "/games/",
	)
	data.PageMeta.Scripts = []string{"/assets/js/games.js"}
	data.PageMeta.JSONLD = []template.HTML{
		breadcrumbJSONLD(r.site, crumb{"Home", "/"}, crumb{"Games", "/games/"}),
	}
	return r.execute(w, "games", &data)
}

// GameDetail renders a game's detail page. Guide may be nil when the record's
// guide_slug dangles; the page simply omits the guide links.
func (r *Renderer) GameDetail(w io.Writer, data GameDetailData) error {
	g := data.Game
	desc := g.MetaDescription
	if desc == "" {
		desc = fmt.Sprintf("%s escape room overview with difficulty %s, %s players, and mechanics %s.",
			g.Title, g.Difficulty, g.PlayerRange(), strings.Join(g.Mechanisms, ", "))
	}
	data.PageMeta = r.page(
		g.Title+" Escape Room | "+r.site.Name,
		desc,
		"/games/"+g.Slug+"/", "/games/",
	)
	data.PageMeta.Scripts = []string{"/assets/js/game-detail.js"}
	data.PageMeta.JSONLD = []template.HTML{
		videoGameJSONLD(r.site, g),
		breadcrumbJSONLD(r.site, crumb{"Home", "/"}, crumb{"Games", "/games/"}, crumb{g.Title, "/games/" + g.Slug + "/"}),
	}
	return r.execute(w, "game", &data)
}

// GuideDetail renders a guide's detail page.
func (r *Renderer) GuideDetail(w io.Writer, data GuideDetailData) error {
	g := data.Guide
	desc := g.MetaDescription
	if desc == "" {
		desc = r.site.Description
	}
	data.PageMeta = r.page(
		g.Title+" | Escape Room Guide",
		desc,
		"/guides/"+g.Slug+"/", "/guides/",
	)
	jsonld := []template.HTML{
		howToJSONLD(g),
		breadcrumbJSONLD(r.site, crumb{"Home", "/"}, crumb{"Guides", "/guides/"}, crumb{g.Title, "/guides/" + g.Slug + "/"}),
	}
	if len(g.FAQ) > 0 {
		jsonld = append(jsonld, faqJSONLD(g))
	}
	if g.HasVideo() {
		jsonld = append(jsonld, videoObjectJSONLD(g))
	}
	data.PageMeta.JSONLD = jsonld
	return r.execute(w, "guide", &data)
}

// GuidesIndex renders the guides listing page.
func (r *Renderer) GuidesIndex(w io.Writer, data GuidesData) error {
	data.PageMeta = r.page(
		"Escape Room Video Guides | "+r.site.Name,
		"Watch escape room walkthroughs paired with tactical notes for rapid clears and team onboarding.",
		"/guides/", "/guides/",
	)
	data.PageMeta.JSONLD = []template.HTML{
		breadcrumbJSONLD(r.site, crumb{"Home", "/"}, crumb{"Guides", "/guides/"}),
	}
	return r.execute(w, "guides", &data)
}

// SimplePage renders a static prose page such as /about/.
func (r *Renderer) SimplePage(w io.Writer, data SimplePageData) error {
	desc := r.site.Description
	if len(data.Paragraphs) > 0 {
		desc = data.Paragraphs[0]
	}
	data.PageMeta = r.page(data.Title, desc, "/"+data.Slug+"/", "/"+data.Slug+"/")
	data.PageMeta.JSONLD = []template.HTML{
		breadcrumbJSONLD(r.site, crumb{"Home", "/"}, crumb{data.Heading, "/" + data.Slug + "/"}),
	}
	return r.execute(w, "page", &data)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Internalf("unknown template %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "render %s", name)
	}
	return nil
}

func (r *Renderer) page(title, description, canonical, active string) Page {
	return Page{
		Site:          r.site,
		Title:         title,
		Description:   description,
		CanonicalPath: canonical,
		Active:        active,
		Year:          time.Now().Year(),
	}
}

func (r *Renderer) thumbURL(slug, fallback string) string {
	if t, ok := r.thumbs[slug]; ok && t.URL != "" {
		return t.URL
	}
	return fallback
}

func (r *Renderer) blurHash(slug string) string {
	return r.thumbs[slug].BlurHash
}

// listingPagePath maps a listing page number to its URL path.
func listingPagePath(page int) string {
	if page <= 1 {
		return "/games/"
	}
	return fmt.Sprintf("/games/page/%d/", page)
}

func pageSeq(n int) []int {
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i + 1
	}
	return seq
}

func formatDate(value string) string {
	t, err := time.Parse(domain.CreatedDateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2, 2006")
}

// langLabel resolves an ISO language code to its English display name,
// falling back to the upper-cased code for anything unrecognized.
func langLabel(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return name
}

func langLabels(codes []string) string {
	labels := make([]string, len(codes))
	for i, code := range codes {
		labels[i] = langLabel(code)
	}
	return strings.Join(labels, ", ")
}
