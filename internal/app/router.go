package app

import (
	"github.com/gin-gonic/gin"

	"github.com/hearthside/logbook-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: mw.Auth,
		AuthHandler:    handlerset.Auth,
		UserHandler:    handlerset.User,
		LogbookHandler: handlerset.Logbook,
		ContentHandler: handlerset.Content,
		InviteHandler:  handlerset.Invite,
		GalleryHandler: handlerset.Gallery,
	})
}
