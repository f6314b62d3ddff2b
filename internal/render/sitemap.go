package render

import (
	"fmt"
	"io"

	"github.com/blueroomhub/blueroom-builder/internal/errors"
)

// Robots writes robots.txt pointing crawlers at the sitemap.
func (r *Renderer) Robots(w io.Writer) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", r.site.BaseURL)
	if err != nil {
		return errors.Wrap(err, errors.CodePersistence, "write robots.txt")
	}
	return nil
}

// Sitemap writes sitemap.xml for the given site-relative paths.
// Paths are slug-derived and contain no characters needing XML escaping.
func (r *Renderer) Sitemap(w io.Writer, paths []string) error {
	if _, err := fmt.Fprint(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n"); err != nil {
		return errors.Wrap(err, errors.CodePersistence, "write sitemap")
	}
	for _, path := range paths {
		if _, err := fmt.Fprintf(w, "  <url><loc>%s%s</loc></url>\n", r.site.BaseURL, path); err != nil {
			return errors.Wrap(err, errors.CodePersistence, "write sitemap")
		}
	}
	if _, err := fmt.Fprint(w, "</urlset>\n"); err != nil {
		return errors.Wrap(err, errors.CodePersistence, "write sitemap")
	}
	return nil
}
