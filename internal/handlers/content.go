package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hearthside/logbook-backend/internal/content"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/services"
)

// 10 MiB, matches the cap on gallery uploads.
const maxImageUploadBytes = 10 << 20

type ContentHandler struct {
	log            *logger.Logger
	contentService services.ContentService
}

func NewContentHandler(log *logger.Logger, contentService services.ContentService) *ContentHandler {
	return &ContentHandler{
		log:            log.With("handler", "ContentHandler"),
		contentService: contentService,
	}
}

func (ch *ContentHandler) GetPageSections(c *gin.Context) {
	sections, err := ch.contentService.GetLogbookPageSections(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (ch *ContentHandler) UpdateSection(c *gin.Context) {
	var req struct {
		Updates content.SectionData `json:"updates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondServiceError(c, apierr.Validation("invalid request body"))
		return
	}
	if len(req.Updates) == 0 {
		RespondServiceError(c, apierr.Validation("updates must not be empty"))
		return
	}
	err := ch.contentService.UpdatePageSection(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")),
		content.SectionKey(c.Param("section")), req.Updates)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *ContentHandler) ToggleSectionVisibility(c *gin.Context) {
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Visible == nil {
		RespondServiceError(c, apierr.Validation("visible is required"))
		return
	}
	err := ch.contentService.ToggleSectionVisibility(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")),
		content.SectionKey(c.Param("section")), *req.Visible)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *ContentHandler) ResetSection(c *gin.Context) {
	err := ch.contentService.ResetPageSection(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")),
		content.SectionKey(c.Param("section")))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *ContentHandler) GetContent(c *gin.Context) {
	items, err := ch.contentService.GetLogbookContent(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"content": items})
}

func (ch *ContentHandler) UpdateContent(c *gin.Context) {
	var req struct {
		Path  string `json:"path"`
		Value any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondServiceError(c, apierr.Validation("invalid request body"))
		return
	}
	err := ch.contentService.UpdateLogbookContent(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")),
		req.Path, req.Value)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *ContentHandler) BatchUpdateContent(c *gin.Context) {
	var req struct {
		Updates map[string]any `json:"updates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondServiceError(c, apierr.Validation("invalid request body"))
		return
	}
	if len(req.Updates) == 0 {
		RespondServiceError(c, apierr.Validation("updates must not be empty"))
		return
	}
	err := ch.contentService.BatchUpdateLogbookContent(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")), req.Updates)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *ContentHandler) SetContentImage(c *gin.Context) {
	dotPath := c.PostForm("path")
	if dotPath == "" {
		RespondServiceError(c, apierr.Validation("path is required"))
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondServiceError(c, apierr.Validation("image file is required"))
		return
	}
	if fileHeader.Size > maxImageUploadBytes {
		RespondServiceError(c, apierr.Validation("image exceeds maximum upload size"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondServiceError(c, apierr.Internal(err))
		return
	}
	defer file.Close()

	url, err := ch.contentService.SetContentImage(
		c.Request.Context(), c.Param("slug"), content.PageType(c.Param("page")),
		dotPath, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}
