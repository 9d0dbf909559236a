package service

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inkwell/internal/apperr"
	"github.com/inkwell/internal/comments"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/render"
	"github.com/inkwell/internal/store"
	"go.uber.org/zap"
)

const (
	maxCommentAuthorLength  = 120
	maxCommentEmailLength   = 255
	maxCommentContentLength = 5000
)

// CommentInput is a reader supplied comment.
type CommentInput struct {
	PostID      uint   `json:"-"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
	ParentID    *uint  `json:"parent_id"`
}

// CommentService stores reader comments and keeps comment_count in step.
type CommentService struct {
	store  store.ContentStore
	logger *zap.Logger
	now    func() time.Time
}

func NewCommentService(st store.ContentStore, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{store: st, logger: logger, now: time.Now}
}

// Submit validates and stores a comment; it is visible immediately.
func (s *CommentService) Submit(ctx context.Context, input CommentInput) (*db.Comment, error) {
	author := strings.TrimSpace(input.AuthorName)
	email := strings.TrimSpace(input.AuthorEmail)
	content := strings.TrimSpace(input.Content)

	switch {
	case author == "":
		return nil, apperr.Validation("author_name", "is required")
	case utf8.RuneCountInString(author) > maxCommentAuthorLength:
		return nil, apperr.Validation("author_name", "is too long")
	case email == "":
		return nil, apperr.Validation("author_email", "is required")
	case len(email) > maxCommentEmailLength:
		return nil, apperr.Validation("author_email", "is too long")
	case content == "":
		return nil, apperr.Validation("content", "is required")
	case utf8.RuneCountInString(content) > maxCommentContentLength:
		return nil, apperr.Validation("content", "is too long")
	case render.HasMarkup(content):
		return nil, apperr.Validation("content", "must be plain text without HTML tags or entities")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.Validation("author_email", "is not a valid address")
	}

	comment := db.Comment{
		PostID:      input.PostID,
		AuthorName:  author,
		AuthorEmail: email,
		Content:     content,
		ParentID:    input.ParentID,
		Approved:    true,
		CreatedAt:   s.now().UTC(),
	}

	err := s.store.Transaction(ctx, func(tx store.ContentStore) error {
		if _, err := tx.LockPost(ctx, input.PostID); err != nil {
			return err
		}
		if input.ParentID != nil {
			parent, err := tx.GetComment(ctx, *input.ParentID)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					return apperr.Validation("parent_id", "does not reference an existing comment")
				}
				return err
			}
			if parent.PostID != input.PostID {
				return apperr.Validation("parent_id", "belongs to a different post")
			}
		}
		if err := tx.CreateComment(ctx, &comment); err != nil {
			return err
		}
		return recountComments(ctx, tx, input.PostID)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// List returns the post's comments oldest first.
func (s *CommentService) List(ctx context.Context, postID uint) ([]db.Comment, error) {
	return s.store.ListComments(ctx, postID)
}

// Tree returns the post's comments arranged into threads.
func (s *CommentService) Tree(ctx context.Context, postID uint) ([]comments.Thread, error) {
	flat, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return comments.BuildTree(flat), nil
}

// Delete hard deletes one comment. Replies stay and are shown as roots.
func (s *CommentService) Delete(ctx context.Context, id uint) error {
	err := s.store.Transaction(ctx, func(tx store.ContentStore) error {
		comment, err := tx.GetComment(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.LockPost(ctx, comment.PostID); err != nil {
			return err
		}
		if err := tx.DeleteComment(ctx, id); err != nil {
			return err
		}
		return recountComments(ctx, tx, comment.PostID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("comment deleted", zap.Uint("comment_id", id))
	return nil
}

func recountComments(ctx context.Context, tx store.ContentStore, postID uint) error {
	count, err := tx.CountComments(ctx, postID)
	if err != nil {
		return err
	}
	return tx.SetProjections(ctx, postID, map[string]any{"comment_count": count})
}
