package site

import "github.com/blueroomhub/blueroom-builder/internal/render"

// staticPageContent holds the prose pages the site ships with. Which of them
// get published is controlled by site.yaml's static_pages list.
var staticPageContent = map[string]render.SimplePageData{
	"about": {
		Slug:    "about",
		Title:   "About Blue Room Games Hub",
		Heading: "About Blue Room Games Hub",
		Paragraphs: []string{
			"Blue Room Games Hub curates escape room and puzzle experiences with a focus on measurable performance metrics.",
			"Our editorial pipeline combines community data, rapid playtesting, and narrative sensitivity to deliver actionable walkthroughs without spoiling critical beats.",
			"The site ships as a static bundle optimised for edge deployment, with structured data and accessibility baked in.",
		},
	},
	"privacy-policy": {
		Slug:    "privacy-policy",
		Title:   "Privacy Policy | Blue Room Games Hub",
		Heading: "Privacy Policy",
		Paragraphs: []string{
			"Blue Room Games Hub operates as a static experience with no tracking scripts installed at launch.",
			"We store no personal data on this site. If you choose to contact us, your email is used solely to respond to your enquiry.",
			"Future analytics or feedback tooling will be opt-in and documented transparently within this policy.",
		},
	},
}
