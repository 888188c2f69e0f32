package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/services"
)

type GalleryHandler struct {
	log            *logger.Logger
	galleryService services.GalleryService
}

func NewGalleryHandler(log *logger.Logger, galleryService services.GalleryService) *GalleryHandler {
	return &GalleryHandler{
		log:            log.With("handler", "GalleryHandler"),
		galleryService: galleryService,
	}
}

func (gh *GalleryHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		RespondServiceError(c, apierr.Validation("photo file is required"))
		return
	}
	if fileHeader.Size > maxImageUploadBytes {
		RespondServiceError(c, apierr.Validation("photo exceeds maximum upload size"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondServiceError(c, apierr.Internal(err))
		return
	}
	defer file.Close()

	photo, err := gh.galleryService.UploadPhoto(
		c.Request.Context(), c.Param("slug"), file,
		fileHeader.Header.Get("Content-Type"), c.PostForm("caption"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"photo": photo})
}

func (gh *GalleryHandler) List(c *gin.Context) {
	photos, err := gh.galleryService.ListPhotos(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"photos": photos})
}

func (gh *GalleryHandler) UpdateCaption(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("photoID"))
	if err != nil {
		RespondServiceError(c, apierr.Validation("invalid photo id"))
		return
	}
	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondServiceError(c, apierr.Validation("invalid request body"))
		return
	}
	photo, err := gh.galleryService.UpdateCaption(c.Request.Context(), photoID, req.Caption)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"photo": photo})
}

func (gh *GalleryHandler) Delete(c *gin.Context) {
	photoID, err := uuid.Parse(c.Param("photoID"))
	if err != nil {
		RespondServiceError(c, apierr.Validation("invalid photo id"))
		return
	}
	if err := gh.galleryService.DeletePhoto(c.Request.Context(), photoID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
