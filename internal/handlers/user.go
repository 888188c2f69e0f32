package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/requestdata"
	"github.com/hearthside/logbook-backend/internal/services"
)

type UserHandler struct {
	log           *logger.Logger
	userService   services.UserService
	avatarService services.AvatarService
}

func NewUserHandler(log *logger.Logger, userService services.UserService, avatarService services.AvatarService) *UserHandler {
	return &UserHandler{
		log:           log.With("handler", "UserHandler"),
		userService:   userService,
		avatarService: avatarService,
	}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthenticated("Not signed in"))
		return
	}
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		RespondServiceError(c, apierr.Validation("avatar file is required"))
		return
	}
	if fileHeader.Size > maxImageUploadBytes {
		RespondServiceError(c, apierr.Validation("avatar exceeds maximum upload size"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondServiceError(c, apierr.Internal(err))
		return
	}
	defer file.Close()

	url, err := uh.avatarService.SetCustomUserAvatar(
		c.Request.Context(), rd.UserID, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"avatar_url": url})
}
