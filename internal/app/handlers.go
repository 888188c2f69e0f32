package app

import (
	"github.com/hearthside/logbook-backend/internal/handlers"
	"github.com/hearthside/logbook-backend/internal/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Logbook *handlers.LogbookHandler
	Content *handlers.ContentHandler
	Invite  *handlers.InviteHandler
	Gallery *handlers.GalleryHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(serviceset.Auth),
		User:    handlers.NewUserHandler(log, serviceset.User, serviceset.Avatar),
		Logbook: handlers.NewLogbookHandler(log, serviceset.Logbook),
		Content: handlers.NewContentHandler(log, serviceset.Content),
		Invite:  handlers.NewInviteHandler(log, serviceset.Invite),
		Gallery: handlers.NewGalleryHandler(log, serviceset.Gallery),
	}
}
