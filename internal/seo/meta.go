package seo

import (
	"strings"
	"unicode/utf8"

	"github.com/inkwell/internal/db"
)

const (
	defaultOGType        = "article"
	maxDescriptionLength = 160
)

// Meta is the effective SEO metadata after overrides and fallbacks are applied.
type Meta struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	CanonicalURL string   `json:"canonical_url"`
	OGType       string   `json:"og_type"`
	Image        string   `json:"image,omitempty"`
}

// ResolveMeta merges the post's override block with values derived from the post itself.
func ResolveMeta(post db.Post, site Site) Meta {
	meta := Meta{
		Title:        strings.TrimSpace(post.SEO.Title),
		Description:  strings.TrimSpace(post.SEO.Description),
		Keywords:     post.SEO.Keywords,
		CanonicalURL: strings.TrimSpace(post.SEO.CanonicalURL),
		OGType:       strings.TrimSpace(post.SEO.OGType),
		Image:        post.ImageURL,
	}
	if meta.Title == "" {
		meta.Title = post.Title
	}
	if meta.Description == "" {
		meta.Description = truncate(strings.TrimSpace(post.Excerpt), maxDescriptionLength)
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = post.Tags
	}
	if meta.CanonicalURL == "" && post.Slug != "" {
		meta.CanonicalURL = site.PostURL(post.Slug)
	}
	if meta.OGType == "" {
		meta.OGType = defaultOGType
	}
	return meta
}

// FillDefaults writes derived values into the empty fields of post.SEO so they are persisted.
func FillDefaults(post *db.Post, site Site) {
	meta := ResolveMeta(*post, site)
	if post.SEO.Title == "" {
		post.SEO.Title = meta.Title
	}
	if post.SEO.Description == "" {
		post.SEO.Description = meta.Description
	}
	if post.SEO.CanonicalURL == "" {
		post.SEO.CanonicalURL = meta.CanonicalURL
	}
	if post.SEO.OGType == "" {
		post.SEO.OGType = meta.OGType
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

// ClearDerived empties SEO fields that still hold the values FillDefaults
// derived from the current post, so they are re-derived after an edit.
func ClearDerived(post *db.Post, site Site) {
	if post.SEO.Title == post.Title {
		post.SEO.Title = ""
	}
	if post.SEO.Description == truncate(strings.TrimSpace(post.Excerpt), maxDescriptionLength) {
		post.SEO.Description = ""
	}
	if post.Slug != "" && post.SEO.CanonicalURL == site.PostURL(post.Slug) {
		post.SEO.CanonicalURL = ""
	}
}
