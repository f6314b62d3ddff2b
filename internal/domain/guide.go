package domain

import "time"

// Story depth levels for a guide.
const (
	StoryDepthLow    = "Low"
	StoryDepthMedium = "Medium"
	StoryDepthHigh   = "High"
)

// Guide represents a walkthrough guide for a game.
// By convention a guide's slug equals its game's slug, which is how the two
// collections stay joined; the catalog tolerates a dangling reference.
type Guide struct {
	Slug            string        `json:"slug" validate:"required,slug"`
	Title           string        `json:"title" validate:"required"`
	GameTitle       string        `json:"game_title"`
	Difficulty      string        `json:"difficulty" validate:"required,oneof=Easy Medium Hard Insane"`
	StoryDepth      string        `json:"story_depth" validate:"omitempty,oneof=Low Medium High"`
	Rating          float64       `json:"rating" validate:"gte=0,lte=5"`
	Mechanisms      []string      `json:"mechanisms"`
	YoutubeVideoID  string        `json:"youtube_video_id,omitempty"`
	VideoTitle      string        `json:"video_title"`
	SummarySteps    []SummaryStep `json:"summary_steps"`
	KeyChallenges   []string      `json:"key_challenges"`
	FAQ             []FAQEntry    `json:"faq"`
	MetaDescription string        `json:"meta_description"`
	Clicks7Norm     float64       `json:"clicks7_norm" validate:"gte=0,lte=1"`
	CreatedDate     string        `json:"created_date"`
}

// SummaryStep is one entry in a guide's step-by-step route.
type SummaryStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FAQEntry is a question/answer pair rendered on the guide page.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CreatedAt parses the guide's created date, zero time on failure.
func (g *Guide) CreatedAt() time.Time {
	t, err := time.Parse(CreatedDateLayout, g.CreatedDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasVideo reports whether the guide carries an embeddable video.
func (g *Guide) HasVideo() bool {
	return g.YoutubeVideoID != ""
}
