package handler

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/render"
	"github.com/inkwell/internal/search"
	"github.com/inkwell/internal/seo"
	"github.com/inkwell/internal/service"
	"github.com/inkwell/internal/video"
)

const defaultPageSize = 9

// PostDetail is a published post with everything a reader page needs.
type PostDetail struct {
	db.Post
	ContentHTML template.HTML      `json:"content_html" swaggertype:"string"`
	ReadingTime int                `json:"reading_time"`
	Meta        seo.Meta           `json:"meta"`
	Schema      json.RawMessage    `json:"schema" swaggertype:"object"`
	Breadcrumb  seo.BreadcrumbList `json:"breadcrumb"`
	Video       *video.Embed       `json:"video,omitempty"`
}

// parseListQuery reads search/category/page/limit; absent values take defaults,
// present but malformed ones are left for validation to reject.
func parseListQuery(c *gin.Context) (search.QueryState, bool) {
	q := search.QueryState{
		SearchTerm: strings.TrimSpace(c.Query("search")),
		Category:   strings.TrimSpace(c.Query("category")),
		Page:       1,
		PageSize:   defaultPageSize,
	}
	fields := []struct {
		key string
		dst *int
	}{{"page", &q.Page}, {"limit", &q.PageSize}}
	for _, f := range fields {
		raw := strings.TrimSpace(c.Query(f.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid "+f.key)
			return q, false
		}
		*f.dst = n
	}
	return q, true
}

// ListPosts godoc
// @Summary      List published posts
// @Tags         posts
// @Produce      json
// @Param        search    query  string  false  "case-insensitive text filter"
// @Param        category  query  string  false  "category or All"
// @Param        page      query  int     false  "1-based page"  default(1)
// @Param        limit     query  int     false  "page size"     default(9)
// @Success      200  {object}  search.Result
// @Failure      400  {object}  ErrorResponse
// @Router       /api/posts [get]
func (a *API) ListPosts(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		return
	}
	result, err := a.posts.List(c.Request.Context(), service.ListOptions{}, q)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FeaturedPosts godoc
// @Summary      List featured posts
// @Tags         posts
// @Produce      json
// @Success      200  {array}  db.Post
// @Router       /api/posts/featured [get]
func (a *API) FeaturedPosts(c *gin.Context) {
	posts, err := a.posts.Featured(c.Request.Context())
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Categories godoc
// @Summary      List categories of published posts
// @Tags         posts
// @Produce      json
// @Success      200  {array}  string
// @Router       /api/categories [get]
func (a *API) Categories(c *gin.Context) {
	categories, err := a.posts.Categories(c.Request.Context())
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": append([]string{search.AllCategories}, categories...)})
}

// GetPost godoc
// @Summary      Get a published post by slug
// @Tags         posts
// @Produce      json
// @Param        slug  path  string  true  "post slug"
// @Success      200  {object}  PostDetail
// @Failure      404  {object}  ErrorResponse
// @Router       /api/posts/{slug} [get]
func (a *API) GetPost(c *gin.Context) {
	post, err := a.posts.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.respondAppError(c, err)
		return
	}

	detail, err := a.buildPostDetail(*post)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (a *API) buildPostDetail(post db.Post) (PostDetail, error) {
	site := a.posts.Site()
	html, err := render.Markdown(post.Content)
	if err != nil {
		return PostDetail{}, err
	}
	schema, err := seo.StructuredData(post, site)
	if err != nil {
		return PostDetail{}, err
	}

	detail := PostDetail{
		Post:        post,
		ContentHTML: html,
		ReadingTime: render.ReadingTime(post.Content),
		Meta:        seo.ResolveMeta(post, site),
		Schema:      schema,
		Breadcrumb:  seo.BuildBreadcrumb(seo.PostCrumbs(post, site)),
	}
	detail.Rating = post.DisplayRating()
	if post.VideoURL != "" {
		if embed, ok := video.Resolve(post.VideoURL); ok {
			detail.Video = &embed
		}
	}
	return detail, nil
}
