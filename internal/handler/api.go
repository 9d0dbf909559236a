package handler

import (
	"github.com/inkwell/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	ratings  *service.RatingService
	comments *service.CommentService
	views    *service.ViewService
	logger   *zap.Logger
}

// Dependencies are the collaborators NewAPI wires into the handlers.
type Dependencies struct {
	DB       *gorm.DB
	Posts    *service.PostService
	Ratings  *service.RatingService
	Comments *service.CommentService
	Views    *service.ViewService
	Logger   *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		db:       deps.DB,
		posts:    deps.Posts,
		ratings:  deps.Ratings,
		comments: deps.Comments,
		views:    deps.Views,
		logger:   logger,
	}
}
