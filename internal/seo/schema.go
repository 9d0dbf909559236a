package seo

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/inkwell/internal/db"
)

const schemaContext = "https://schema.org"

// Site is the publisher identity stamped into every document.
type Site struct {
	Name    string
	BaseURL string
	LogoURL string
}

// PostURL returns the canonical public URL of a post.
func (s Site) PostURL(slug string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/blog/" + slug
}

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ImageObject struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type Organization struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *ImageObject `json:"logo,omitempty"`
}

type WebPage struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type AggregateRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	RatingCount uint    `json:"ratingCount"`
	BestRating  int     `json:"bestRating"`
	WorstRating int     `json:"worstRating"`
}

// ArticleSchema is the schema.org BlogPosting document for a post.
type ArticleSchema struct {
	Context          string           `json:"@context"`
	Type             string           `json:"@type"`
	Headline         string           `json:"headline"`
	Description      string           `json:"description"`
	Image            string           `json:"image,omitempty"`
	Author           Person           `json:"author"`
	Publisher        Organization     `json:"publisher"`
	DatePublished    string           `json:"datePublished"`
	DateModified     string           `json:"dateModified"`
	ArticleSection   string           `json:"articleSection,omitempty"`
	Keywords         string           `json:"keywords,omitempty"`
	WordCount        int              `json:"wordCount"`
	MainEntityOfPage WebPage          `json:"mainEntityOfPage"`
	AggregateRating  *AggregateRating `json:"aggregateRating,omitempty"`
}

// BuildArticleSchema 生成文章的结构化数据。只有存在评分时才输出 aggregateRating。
func BuildArticleSchema(post db.Post, site Site) ArticleSchema {
	meta := ResolveMeta(post, site)

	schema := ArticleSchema{
		Context:        schemaContext,
		Type:           "BlogPosting",
		Headline:       post.Title,
		Description:    meta.Description,
		Image:          post.ImageURL,
		Author:         Person{Type: "Person", Name: post.AuthorName},
		Publisher:      Organization{Type: "Organization", Name: site.Name},
		DatePublished:  formatDate(post.PublishedAt),
		DateModified:   formatDate(lastModified(post)),
		ArticleSection: post.Category,
		Keywords:       strings.Join(meta.Keywords, ", "),
		WordCount:      WordCount(post.Content),
		MainEntityOfPage: WebPage{
			Type: "WebPage",
			ID:   meta.CanonicalURL,
		},
	}
	if site.LogoURL != "" {
		schema.Publisher.Logo = &ImageObject{Type: "ImageObject", URL: site.LogoURL}
	}
	if post.TotalRatings > 0 {
		schema.AggregateRating = &AggregateRating{
			Type:        "AggregateRating",
			RatingValue: post.Rating,
			RatingCount: post.TotalRatings,
			BestRating:  5,
			WorstRating: 1,
		}
	}
	return schema
}

// StructuredData returns the author override when present, otherwise the generated schema.
func StructuredData(post db.Post, site Site) (json.RawMessage, error) {
	if len(post.SEO.StructuredData) > 0 && json.Valid(post.SEO.StructuredData) {
		return json.RawMessage(post.SEO.StructuredData), nil
	}
	return json.Marshal(BuildArticleSchema(post, site))
}

// WordCount counts whitespace separated tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

func lastModified(post db.Post) time.Time {
	if post.UpdatedAt.After(post.PublishedAt) {
		return post.UpdatedAt
	}
	return post.PublishedAt
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
