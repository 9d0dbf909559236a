package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/search"
	"github.com/inkwell/internal/seo"
	"github.com/inkwell/internal/store"
	"github.com/inkwell/internal/video"
	"go.uber.org/zap"
)

const (
	maxTitleLength    = 200
	maxExcerptLength  = 500
	maxCategoryLength = 100
	maxTagLength      = 64
	fallbackSlug      = "post"
	// 同名文章最多尝试的后缀数量，超过后返回冲突。
	maxSlugAttempts = 100
)

// Notifier is told about posts that have just become public.
type Notifier interface {
	PostPublished(post db.Post)
}

// PostService owns the post lifecycle: validation, slugs, SEO defaults and publishing.
type PostService struct {
	store    store.ContentStore
	site     seo.Site
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

type PostOption func(*PostService)

func WithNotifier(n Notifier) PostOption {
	return func(s *PostService) {
		s.notifier = n
	}
}

func WithLogger(l *zap.Logger) PostOption {
	return func(s *PostService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) PostOption {
	return func(s *PostService) {
		s.now = now
	}
}

// NewPostService creates a PostService instance.
func NewPostService(st store.ContentStore, site seo.Site, opts ...PostOption) *PostService {
	s := &PostService{
		store:  st,
		site:   site,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SEOInput is the optional override block accepted from authors.
type SEOInput struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Keywords       []string        `json:"keywords"`
	CanonicalURL   string          `json:"canonical_url"`
	OGType         string          `json:"og_type"`
	StructuredData json.RawMessage `json:"structured_data" swaggertype:"object"`
}

// PostDraft represents fields accepted when creating a post.
type PostDraft struct {
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	AuthorName  string     `json:"author_name"`
	AuthorID    string     `json:"author_id"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	ImageURL    string     `json:"image_url"`
	VideoURL    string     `json:"video_url"`
	PublishedAt *time.Time `json:"published_at"`
	Slug        string     `json:"slug"`
	SEO         *SEOInput  `json:"seo"`
}

// PostPatch is a partial update; nil fields are left unchanged.
type PostPatch struct {
	Title       *string    `json:"title"`
	Excerpt     *string    `json:"excerpt"`
	Content     *string    `json:"content"`
	AuthorName  *string    `json:"author_name"`
	Category    *string    `json:"category"`
	Tags        *[]string  `json:"tags"`
	ImageURL    *string    `json:"image_url"`
	VideoURL    *string    `json:"video_url"`
	PublishedAt *time.Time `json:"published_at"`
	Slug        *string    `json:"slug"`
	SEO         *SEOInput  `json:"seo"`
}

// ListOptions selects which posts a listing draws from.
type ListOptions struct {
	IncludeDrafts bool
	FeaturedOnly  bool
}

// Create validates a draft and persists it unpublished with a unique slug.
func (s *PostService) Create(ctx context.Context, draft PostDraft) (*db.Post, error) {
	post := db.Post{
		Title:      strings.TrimSpace(draft.Title),
		Excerpt:    strings.TrimSpace(draft.Excerpt),
		Content:    draft.Content,
		AuthorName: strings.TrimSpace(draft.AuthorName),
		AuthorID:   strings.TrimSpace(draft.AuthorID),
		Category:   strings.TrimSpace(draft.Category),
		Tags:       normalizeTags(draft.Tags),
		ImageURL:   strings.TrimSpace(draft.ImageURL),
		VideoURL:   strings.TrimSpace(draft.VideoURL),
	}
	if draft.SEO != nil {
		applySEOInput(&post, *draft.SEO)
	}
	if err := validatePost(&post); err != nil {
		return nil, err
	}

	post.PublishedAt = s.now().UTC()
	if draft.PublishedAt != nil && !draft.PublishedAt.IsZero() {
		post.PublishedAt = draft.PublishedAt.UTC()
	}

	explicit := strings.TrimSpace(draft.Slug)
	if explicit != "" {
		if !seo.IsValidSlug(explicit) {
			return nil, apperr.Validation("slug", "must be lowercase words joined by single hyphens")
		}
		post.Slug = explicit
		seo.FillDefaults(&post, s.site)
		if err := s.store.CreatePost(ctx, &post); err != nil {
			return nil, err
		}
		s.logger.Info("post created", zap.Uint("post_id", post.ID), zap.String("slug", post.Slug))
		return &post, nil
	}

	base := baseSlug(post.Title)
	canonical := post.SEO.CanonicalURL
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := slugCandidate(base, attempt)
		taken, err := s.store.SlugTaken(ctx, candidate, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		post.ID = 0
		post.Slug = candidate
		post.SEO.CanonicalURL = canonical
		seo.FillDefaults(&post, s.site)
		err = s.store.CreatePost(ctx, &post)
		if errors.Is(err, apperr.ErrConflict) {
			// 并发创建抢占了同一个 slug，换下一个后缀重试。
			continue
		}
		if err != nil {
			return nil, err
		}
		s.logger.Info("post created", zap.Uint("post_id", post.ID), zap.String("slug", post.Slug))
		return &post, nil
	}
	return nil, apperr.Conflict(fmt.Sprintf("no free slug for %q", base))
}

// Update applies a partial patch to the post identified by ref (numeric id or slug).
func (s *PostService) Update(ctx context.Context, ref string, patch PostPatch) (*db.Post, error) {
	post, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	seo.ClearDerived(post, s.site)
	titleChanged := false
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		titleChanged = title != post.Title
		post.Title = title
	}
	if patch.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.AuthorName != nil {
		post.AuthorName = strings.TrimSpace(*patch.AuthorName)
	}
	if patch.Category != nil {
		post.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Tags != nil {
		post.Tags = normalizeTags(*patch.Tags)
	}
	if patch.ImageURL != nil {
		post.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.VideoURL != nil {
		post.VideoURL = strings.TrimSpace(*patch.VideoURL)
	}
	if patch.PublishedAt != nil && !patch.PublishedAt.IsZero() {
		post.PublishedAt = patch.PublishedAt.UTC()
	}
	if patch.SEO != nil {
		post.SEO = db.SEOMeta{}
		applySEOInput(post, *patch.SEO)
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}

	switch {
	case patch.Slug != nil:
		slug := strings.TrimSpace(*patch.Slug)
		if !seo.IsValidSlug(slug) {
			return nil, apperr.Validation("slug", "must be lowercase words joined by single hyphens")
		}
		if slug != post.Slug {
			taken, err := s.store.SlugTaken(ctx, slug, post.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict(fmt.Sprintf("slug %q is already taken", slug))
			}
			post.Slug = slug
		}
	case titleChanged && !post.Published:
		slug, err := s.freeSlug(ctx, baseSlug(post.Title), post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}

	seo.FillDefaults(post, s.site)
	post.UpdatedAt = s.now().UTC()
	if err := s.store.UpdatePostContent(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// SetPublished toggles public visibility. Only the draft to published
// transition notifies; repeating the current state is a no-op.
func (s *PostService) SetPublished(ctx context.Context, ref string, published bool) (*db.Post, error) {
	post, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if post.Published == published {
		return post, nil
	}

	now := s.now().UTC()
	if err := s.store.UpdatePostFields(ctx, post.ID, map[string]any{"published": published, "updated_at": now}); err != nil {
		return nil, err
	}
	post.Published = published
	post.UpdatedAt = now

	if published {
		s.logger.Info("post published", zap.Uint("post_id", post.ID), zap.String("slug", post.Slug))
		if s.notifier != nil {
			s.notifier.PostPublished(*post)
		}
	}
	return post, nil
}

func (s *PostService) SetFeatured(ctx context.Context, ref string, featured bool) (*db.Post, error) {
	post, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if post.Featured == featured {
		return post, nil
	}

	now := s.now().UTC()
	if err := s.store.UpdatePostFields(ctx, post.ID, map[string]any{"featured": featured, "updated_at": now}); err != nil {
		return nil, err
	}
	post.Featured = featured
	post.UpdatedAt = now
	return post, nil
}

// Delete removes the post together with its comments, ratings and views.
func (s *PostService) Delete(ctx context.Context, ref string) error {
	post, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	s.logger.Info("post deleted", zap.Uint("post_id", post.ID), zap.String("slug", post.Slug))
	return nil
}

// Get fetches a post by id or slug regardless of publication state.
func (s *PostService) Get(ctx context.Context, ref string) (*db.Post, error) {
	return s.resolve(ctx, ref)
}

// GetPublished fetches a public post by slug; drafts are reported as missing.
func (s *PostService) GetPublished(ctx context.Context, slug string) (*db.Post, error) {
	post, err := s.store.GetPostBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, apperr.NotFound("post", slug)
	}
	return post, nil
}

// List loads candidate posts and filters and paginates them.
func (s *PostService) List(ctx context.Context, opts ListOptions, q search.QueryState) (search.Result, error) {
	if err := q.Validate(); err != nil {
		return search.Result{}, err
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{
		PublishedOnly: !opts.IncludeDrafts,
		FeaturedOnly:  opts.FeaturedOnly,
	})
	if err != nil {
		return search.Result{}, err
	}
	return search.Query(posts, q)
}

// Featured returns every published featured post, newest first.
func (s *PostService) Featured(ctx context.Context) ([]db.Post, error) {
	return s.store.ListPosts(ctx, store.PostFilter{PublishedOnly: true, FeaturedOnly: true})
}

// Categories lists the distinct categories of published posts.
func (s *PostService) Categories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx, true)
}

// Site exposes the site identity used for SEO output.
func (s *PostService) Site() seo.Site {
	return s.site
}

// resolve 先把纯数字当作 id 查找，找不到再按 slug 查找。
func (s *PostService) resolve(ctx context.Context, ref string) (*db.Post, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.Validation("post", "reference is required")
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil && id > 0 {
		post, err := s.store.GetPost(ctx, uint(id))
		if err == nil || !errors.Is(err, apperr.ErrNotFound) {
			return post, err
		}
	}
	return s.store.GetPostBySlug(ctx, ref)
}

func (s *PostService) freeSlug(ctx context.Context, base string, excludeID uint) (string, error) {
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := slugCandidate(base, attempt)
		taken, err := s.store.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.Conflict(fmt.Sprintf("no free slug for %q", base))
}

func baseSlug(title string) string {
	if slug := seo.Slugify(title); slug != "" {
		return slug
	}
	return fallbackSlug
}

func slugCandidate(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

func validatePost(post *db.Post) error {
	if post.Title == "" {
		return apperr.Validation("title", "is required")
	}
	if utf8.RuneCountInString(post.Title) > maxTitleLength {
		return apperr.Validation("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	if post.Excerpt == "" {
		return apperr.Validation("excerpt", "is required")
	}
	if utf8.RuneCountInString(post.Excerpt) > maxExcerptLength {
		return apperr.Validation("excerpt", fmt.Sprintf("must be at most %d characters", maxExcerptLength))
	}
	if strings.TrimSpace(post.Content) == "" {
		return apperr.Validation("content", "is required")
	}
	if post.Category == "" {
		return apperr.Validation("category", "is required")
	}
	if utf8.RuneCountInString(post.Category) > maxCategoryLength {
		return apperr.Validation("category", fmt.Sprintf("must be at most %d characters", maxCategoryLength))
	}
	if post.Category == search.AllCategories {
		return apperr.Validation("category", fmt.Sprintf("%q is reserved", search.AllCategories))
	}
	if len(post.Tags) == 0 {
		return apperr.Validation("tags", "at least one tag is required")
	}
	for _, tag := range post.Tags {
		if utf8.RuneCountInString(tag) > maxTagLength {
			return apperr.Validation("tags", fmt.Sprintf("each tag must be at most %d characters", maxTagLength))
		}
	}
	if post.VideoURL != "" {
		if !video.IsValidURL(post.VideoURL) {
			return apperr.Validation("video_url", "is not a supported video platform")
		}
		post.VideoURL = video.Normalize(post.VideoURL)
	}
	if len(post.SEO.StructuredData) > 0 && !json.Valid(post.SEO.StructuredData) {
		return apperr.Validation("seo.structured_data", "must be valid JSON")
	}
	return nil
}

// normalizeTags trims tags and drops blanks and case-insensitive duplicates, keeping first spelling.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tag)
	}
	return result
}

func applySEOInput(post *db.Post, in SEOInput) {
	post.SEO.Title = strings.TrimSpace(in.Title)
	post.SEO.Description = strings.TrimSpace(in.Description)
	post.SEO.Keywords = normalizeTags(in.Keywords)
	post.SEO.CanonicalURL = strings.TrimSpace(in.CanonicalURL)
	post.SEO.OGType = strings.TrimSpace(in.OGType)
	if trimmed := strings.TrimSpace(string(in.StructuredData)); trimmed != "" && trimmed != "null" {
		post.SEO.StructuredData = []byte(trimmed)
	}
}
