package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/hearthside/logbook-backend/internal/handlers"
	"github.com/hearthside/logbook-backend/internal/middleware"
	"github.com/hearthside/logbook-backend/internal/observability"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	LogbookHandler *handlers.LogbookHandler
	ContentHandler *handlers.ContentHandler
	InviteHandler  *handlers.InviteHandler
	GalleryHandler *handlers.GalleryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if observability.Enabled() {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user/avatar", cfg.UserHandler.UploadAvatar)

	// Logbooks
	protected.POST("/logbooks", cfg.LogbookHandler.Create)
	protected.GET("/logbooks", cfg.LogbookHandler.ListMine)
	protected.GET("/logbooks/:slug", cfg.LogbookHandler.Get)
	protected.GET("/logbooks/:slug/members", cfg.LogbookHandler.ListMembers)

	// Invites
	protected.POST("/logbooks/:slug/invites", cfg.InviteHandler.Create)
	protected.GET("/logbooks/:slug/invites", cfg.InviteHandler.List)
	protected.POST("/invites/redeem", cfg.InviteHandler.Redeem)

	// Page content
	protected.GET("/logbooks/:slug/pages/:page/sections", cfg.ContentHandler.GetPageSections)
	protected.PUT("/logbooks/:slug/pages/:page/sections/:section", cfg.ContentHandler.UpdateSection)
	protected.PUT("/logbooks/:slug/pages/:page/sections/:section/visibility", cfg.ContentHandler.ToggleSectionVisibility)
	protected.DELETE("/logbooks/:slug/pages/:page/sections/:section", cfg.ContentHandler.ResetSection)
	protected.GET("/logbooks/:slug/pages/:page/content", cfg.ContentHandler.GetContent)
	protected.PUT("/logbooks/:slug/pages/:page/content", cfg.ContentHandler.UpdateContent)
	protected.PUT("/logbooks/:slug/pages/:page/content/batch", cfg.ContentHandler.BatchUpdateContent)
	protected.POST("/logbooks/:slug/pages/:page/content/image", cfg.ContentHandler.SetContentImage)

	// Gallery
	protected.POST("/logbooks/:slug/photos", cfg.GalleryHandler.Upload)
	protected.GET("/logbooks/:slug/photos", cfg.GalleryHandler.List)
	protected.PUT("/photos/:photoID", cfg.GalleryHandler.UpdateCaption)
	protected.DELETE("/photos/:photoID", cfg.GalleryHandler.Delete)

	return router
}
