// Package search filters and paginates an in-memory post collection.
package search

import (
	"strings"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/db"
)

// AllCategories is the category sentinel that disables category filtering.
const AllCategories = "All"

// QueryState is the serialisable listing state held by a client.
type QueryState struct {
	SearchTerm string `json:"search_term" form:"search"`
	Category   string `json:"category" form:"category"`
	Page       int    `json:"page" form:"page"`
	PageSize   int    `json:"page_size" form:"limit"`
}

// Validate rejects non-positive page sizes and pages before the first.
func (q QueryState) Validate() error {
	if q.PageSize <= 0 {
		return apperr.Validation("page_size", "must be positive")
	}
	if q.Page < 1 {
		return apperr.Validation("page", "must be at least 1")
	}
	return nil
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPosts  int  `json:"total_posts"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type Result struct {
	Items      []db.Post  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Query keeps posts whose title, excerpt or content contains the search term
// (case-insensitive) and whose category matches, then returns one page.
// Input order is preserved; a page past the end yields no items but true totals.
func Query(posts []db.Post, q QueryState) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	category := strings.TrimSpace(q.Category)
	filterCategory := category != "" && category != AllCategories

	matched := make([]db.Post, 0, len(posts))
	for _, post := range posts {
		if filterCategory && post.Category != category {
			continue
		}
		if term != "" && !containsTerm(post, term) {
			continue
		}
		matched = append(matched, post)
	}

	total := len(matched)
	totalPages := (total + q.PageSize - 1) / q.PageSize
	start := (q.Page - 1) * q.PageSize
	items := []db.Post{}
	if start < total {
		end := min(start+q.PageSize, total)
		items = matched[start:end]
	}

	return Result{
		Items: items,
		Pagination: Pagination{
			CurrentPage: q.Page,
			PageSize:    q.PageSize,
			TotalPosts:  total,
			TotalPages:  totalPages,
			HasNextPage: q.Page < totalPages,
			HasPrevPage: q.Page > 1,
		},
	}, nil
}

func containsTerm(post db.Post, term string) bool {
	return strings.Contains(strings.ToLower(post.Title), term) ||
		strings.Contains(strings.ToLower(post.Excerpt), term) ||
		strings.Contains(strings.ToLower(post.Content), term)
}
