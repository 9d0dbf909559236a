package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/comments"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/rating"
	"github.com/inkwell/internal/service"
)

const streamHeartbeat = 25 * time.Second

// ViewCountResponse carries a post's authoritative view count.
type ViewCountResponse struct {
	PostID    uint   `json:"post_id"`
	ViewCount uint64 `json:"view_count"`
}

// CommentTreeResponse is the threaded comment listing.
type CommentTreeResponse struct {
	Threads []comments.Thread `json:"threads"`
	Total   int               `json:"total"`
}

// RatingRequest is the body of a rating submission.
type RatingRequest struct {
	Value  int    `json:"value"`
	UserID string `json:"user_id"`
}

// RatingResponse is the aggregate plus the caller's own value, if any.
type RatingResponse struct {
	rating.Summary
	UserValue *int `json:"user_value,omitempty"`
}

func (a *API) publishedPost(c *gin.Context) (*db.Post, bool) {
	post, err := a.posts.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		a.respondAppError(c, err)
		return nil, false
	}
	return post, true
}

// TrackView godoc
// @Summary      Record a view of a post
// @Tags         views
// @Produce      json
// @Param        slug  path  string  true  "post slug"
// @Success      200  {object}  ViewCountResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/posts/{slug}/views [post]
func (a *API) TrackView(c *gin.Context) {
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	count, err := a.views.Track(c.Request.Context(), post.ID, ensureVisitorID(c))
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewCountResponse{PostID: post.ID, ViewCount: count})
}

// GetViews godoc
// @Summary      Get a post's view count
// @Tags         views
// @Produce      json
// @Param        slug  path  string  true  "post slug"
// @Success      200  {object}  ViewCountResponse
// @Router       /api/posts/{slug}/views [get]
func (a *API) GetViews(c *gin.Context) {
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	count, err := a.views.Count(c.Request.Context(), post.ID)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewCountResponse{PostID: post.ID, ViewCount: count})
}

// StreamViews godoc
// @Summary      Follow a post's view count as server-sent events
// @Tags         views
// @Produce      text/event-stream
// @Param        slug  path  string  true  "post slug"
// @Success      200  {string}  string  "event: views"
// @Router       /api/posts/{slug}/views/stream [get]
func (a *API) StreamViews(c *gin.Context) {
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	// 订阅随请求上下文结束而关闭，客户端断开即释放。
	sub, err := a.views.Subscribe(ctx, post.ID)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	defer sub.Close()

	count, err := a.views.Count(ctx, post.ID)
	if err != nil {
		a.respondAppError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("views", ViewCountResponse{PostID: post.ID, ViewCount: count})
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case update, open := <-sub.Updates():
			if !open {
				return
			}
			c.SSEvent("views", ViewCountResponse{PostID: update.PostID, ViewCount: update.Count})
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
		}
		c.Writer.Flush()
	}
}

// ListComments godoc
// @Summary      List a post's comments as threads
// @Tags         comments
// @Produce      json
// @Param        slug  path  string  true  "post slug"
// @Success      200  {object}  CommentTreeResponse
// @Router       /api/posts/{slug}/comments [get]
func (a *API) ListComments(c *gin.Context) {
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	threads, err := a.comments.Tree(c.Request.Context(), post.ID)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	total := 0
	for _, t := range threads {
		total += 1 + len(t.Replies)
	}
	c.JSON(http.StatusOK, CommentTreeResponse{Threads: threads, Total: total})
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        slug     path  string                true  "post slug"
// @Param        comment  body  service.CommentInput  true  "comment"
// @Success      201  {object}  db.Comment
// @Failure      400  {object}  ErrorResponse
// @Router       /api/posts/{slug}/comments [post]
func (a *API) CreateComment(c *gin.Context) {
	var input service.CommentInput
	if !bindJSON(c, &input, "invalid comment payload") {
		return
	}
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	input.PostID = post.ID
	comment, err := a.comments.Submit(c.Request.Context(), input)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetRating godoc
// @Summary      Get a post's rating summary
// @Tags         ratings
// @Produce      json
// @Param        slug     path   string  true   "post slug"
// @Param        user_id  query  string  false  "rater id; defaults to the visitor cookie"
// @Success      200  {object}  RatingResponse
// @Router       /api/posts/{slug}/ratings [get]
func (a *API) GetRating(c *gin.Context) {
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	summary, err := a.ratings.Summary(ctx, post.ID)
	if err != nil {
		a.respondAppError(c, err)
		return
	}

	resp := RatingResponse{Summary: summary}
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		if cookie, err := c.Cookie(visitorCookieName); err == nil {
			userID = strings.TrimSpace(cookie)
		}
	}
	if userID != "" {
		if r, err := a.ratings.Get(ctx, post.ID, userID); err == nil {
			resp.UserValue = &r.Value
		}
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitRating godoc
// @Summary      Rate a post from 1 to 5
// @Description  One rating per user; resubmitting replaces the previous value.
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Param        slug    path  string         true  "post slug"
// @Param        rating  body  RatingRequest  true  "rating"
// @Success      200  {object}  RatingResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /api/posts/{slug}/ratings [put]
func (a *API) SubmitRating(c *gin.Context) {
	var req RatingRequest
	if !bindJSON(c, &req, "invalid rating payload") {
		return
	}
	post, ok := a.publishedPost(c)
	if !ok {
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = ensureVisitorID(c)
	}
	summary, err := a.ratings.Submit(c.Request.Context(), post.ID, userID, req.Value)
	if err != nil {
		a.respondAppError(c, err)
		return
	}
	value := req.Value
	c.JSON(http.StatusOK, RatingResponse{Summary: summary, UserValue: &value})
}
