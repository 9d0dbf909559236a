package db

import "time"

// Comment 支持一层回复；ParentID 指向同一文章下的评论。
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
	AuthorName  string    `gorm:"size:120;not null" json:"author_name"`
	AuthorEmail string    `gorm:"size:255;not null" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// Rating keeps one row per (post, user); resubmission overwrites Value.
type Rating struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostView 是追加写入的浏览记录，posts.view_count 由它派生。
type PostView struct {
	ID       uint      `gorm:"primaryKey"`
	PostID   uint      `gorm:"index;not null"`
	Viewer   string    `gorm:"size:64"`
	ViewedAt time.Time `gorm:"index"`
}
