package db

import (
	"time"

	"gorm.io/datatypes"
)

// Post 是博客文章。ViewCount / Rating / TotalRatings / CommentCount 为投影字段，
// 只能由对应的服务在同一事务内维护。
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Excerpt      string    `gorm:"type:text;not null" json:"excerpt"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	AuthorName   string    `gorm:"size:120" json:"author_name"`
	AuthorID     string    `gorm:"size:64;index" json:"author_id,omitempty"`
	PublishedAt  time.Time `gorm:"index" json:"published_at"`
	Category     string    `gorm:"size:80;index;not null" json:"category"`
	Tags         []string  `gorm:"type:text;serializer:json" json:"tags"`
	ImageURL     string    `gorm:"size:512" json:"image_url,omitempty"`
	VideoURL     string    `gorm:"size:512" json:"video_url,omitempty"`
	Slug         string    `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Published    bool      `gorm:"index;default:false" json:"published"`
	Featured     bool      `gorm:"index;default:false" json:"featured"`
	ViewCount    uint64    `gorm:"default:0;not null" json:"view_count"`
	Rating       float64   `gorm:"default:0;not null" json:"rating"`
	TotalRatings uint      `gorm:"default:0;not null" json:"total_ratings"`
	CommentCount uint      `gorm:"default:0;not null" json:"comment_count"`
	SEO          SEOMeta   `gorm:"embedded;embeddedPrefix:seo_" json:"seo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SEOMeta holds author supplied overrides; empty fields fall back to post data.
type SEOMeta struct {
	Title          string         `gorm:"size:255" json:"title,omitempty"`
	Description    string         `gorm:"type:text" json:"description,omitempty"`
	Keywords       []string       `gorm:"type:text;serializer:json" json:"keywords,omitempty"`
	CanonicalURL   string         `gorm:"size:512" json:"canonical_url,omitempty"`
	OGType         string         `gorm:"size:40" json:"og_type,omitempty"`
	StructuredData datatypes.JSON `json:"structured_data,omitempty"`
}

// DisplayRating 在没有评分时返回 0，避免把陈旧的均值展示给读者。
func (p *Post) DisplayRating() float64 {
	if p.TotalRatings == 0 {
		return 0
	}
	return p.Rating
}
