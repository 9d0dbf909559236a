package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	_ "github.com/inkwell/docs"
	"github.com/inkwell/internal/handler"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const sessionName = "inkwell_session"

// Options configures the engine built by SetupRouter.
type Options struct {
	SessionSecret string
	ServiceName   string
	Logger        *zap.Logger
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	// Health reports whether dependencies are reachable.
	Health func(ctx context.Context) error
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "inkwell"
	}

	r := gin.New()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestLogger(logger))

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Health(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	public := r.Group("/api")
	{
		public.GET("/posts", api.ListPosts)
		public.GET("/posts/featured", api.FeaturedPosts)
		public.GET("/categories", api.Categories)
		public.GET("/posts/:slug", api.GetPost)
		public.GET("/posts/:slug/views", api.GetViews)
		public.POST("/posts/:slug/views", api.TrackView)
		public.GET("/posts/:slug/views/stream", api.StreamViews)
		public.GET("/posts/:slug/comments", api.ListComments)
		public.POST("/posts/:slug/comments", api.CreateComment)
		public.GET("/posts/:slug/ratings", api.GetRating)
		public.PUT("/posts/:slug/ratings", api.SubmitRating)
	}

	// 后台管理路由
	r.POST("/admin/login", api.Login)
	r.POST("/admin/logout", api.Logout)

	admin := r.Group("/api/admin")
	admin.Use(handler.AuthRequired())
	{
		admin.GET("/posts", api.ListAdminPosts)
		admin.POST("/posts", api.CreatePost)
		admin.GET("/posts/:id", api.GetAdminPost)
		admin.PUT("/posts/:id", api.UpdatePost)
		admin.DELETE("/posts/:id", api.DeletePost)
		admin.PUT("/posts/:id/published", api.SetPublished)
		admin.PUT("/posts/:id/featured", api.SetFeatured)
		admin.DELETE("/comments/:id", api.DeleteComment)
	}

	return r
}

// WithCORS wraps the engine in a CORS policy. No origins means same-origin only.
func WithCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(next)
}
