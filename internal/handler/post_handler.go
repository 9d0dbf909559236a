package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/service"
)

const adminPageSize = 20

// PublishRequest toggles visibility.
type PublishRequest struct {
	Published *bool `json:"published"`
}

// FeatureRequest toggles the featured flag.
type FeatureRequest struct {
	Featured *bool `json:"featured"`
}

// ListAdminPosts godoc
// @Summary      List posts including drafts
// @Tags         admin
// @Produce      json
// @Param        search    query  string  false  "text filter"
// @Param        category  query  string  false  "category or All"
// @Param        page      query  int     false  "1-based page"
// @Param        limit     query  int     false  "page size"
// @Success      200  {object}  search.Result
// @Router       /api/admin/posts [get]
func (a *API) ListAdminPosts(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		return
	}
	if c.Query("limit") == "" {
		q.PageSize = adminPageSize
	}
	result, err := a.posts.List(c.Request.Context(), service.ListOptions{IncludeDrafts: true}, q)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAdminPost godoc
// @Summary      Get any post by id or slug
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "post id or slug"
// @Success      200  {object}  db.Post
// @Failure      404  {object}  ErrorResponse
// @Router       /api/admin/posts/{id} [get]
func (a *API) GetAdminPost(c *gin.Context) {
	post, err := a.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary      Create a draft post
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        post  body  service.PostDraft  true  "draft"
// @Success      201  {object}  db.Post
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/admin/posts [post]
func (a *API) CreatePost(c *gin.Context) {
	var draft service.PostDraft
	if !bindJSON(c, &draft, "invalid post payload") {
		return
	}
	authorID, authorName := sessionAuthor(c)
	if draft.AuthorID == "" {
		draft.AuthorID = authorID
	}
	if draft.AuthorName == "" {
		draft.AuthorName = authorName
	}

	post, err := a.posts.Create(c.Request.Context(), draft)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary      Partially update a post
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id     path  string             true  "post id or slug"
// @Param        patch  body  service.PostPatch  true  "fields to change"
// @Success      200  {object}  db.Post
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/admin/posts/{id} [put]
func (a *API) UpdatePost(c *gin.Context) {
	var patch service.PostPatch
	if !bindJSON(c, &patch, "invalid post payload") {
		return
	}
	post, err := a.posts.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post with its comments, ratings and views
// @Tags         admin
// @Param        id  path  string  true  "post id or slug"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /api/admin/posts/{id} [delete]
func (a *API) DeletePost(c *gin.Context) {
	if err := a.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.respondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPublished godoc
// @Summary      Publish or unpublish a post
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "post id or slug"
// @Param        body  body  PublishRequest  true  "target state"
// @Success      200  {object}  db.Post
// @Router       /api/admin/posts/{id}/published [put]
func (a *API) SetPublished(c *gin.Context) {
	var req PublishRequest
	if !bindJSON(c, &req, "invalid publish payload") {
		return
	}
	if req.Published == nil {
		respondError(c, http.StatusBadRequest, "published is required")
		return
	}
	post, err := a.posts.SetPublished(c.Request.Context(), c.Param("id"), *req.Published)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// SetFeatured godoc
// @Summary      Feature or unfeature a post
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "post id or slug"
// @Param        body  body  FeatureRequest  true  "target state"
// @Success      200  {object}  db.Post
// @Router       /api/admin/posts/{id}/featured [put]
func (a *API) SetFeatured(c *gin.Context) {
	var req FeatureRequest
	if !bindJSON(c, &req, "invalid feature payload") {
		return
	}
	if req.Featured == nil {
		respondError(c, http.StatusBadRequest, "featured is required")
		return
	}
	post, err := a.posts.SetFeatured(c.Request.Context(), c.Param("id"), *req.Featured)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Tags         admin
// @Param        id  path  int  true  "comment id"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /api/admin/comments/{id} [delete]
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.comments.Delete(c.Request.Context(), id); err != nil {
		a.respondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
