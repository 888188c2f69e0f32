package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/services"
)

type LogbookHandler struct {
	log            *logger.Logger
	logbookService services.LogbookService
}

func NewLogbookHandler(log *logger.Logger, logbookService services.LogbookService) *LogbookHandler {
	return &LogbookHandler{
		log:            log.With("handler", "LogbookHandler"),
		logbookService: logbookService,
	}
}

func (lh *LogbookHandler) Create(c *gin.Context) {
	var req struct {
		Title      string `json:"title"`
		FamilyName string `json:"family_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondServiceError(c, apierr.Validation("invalid request body"))
		return
	}
	logbook, err := lh.logbookService.CreateLogbook(c.Request.Context(), req.Title, req.FamilyName)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"logbook": logbook})
}

func (lh *LogbookHandler) Get(c *gin.Context) {
	withStats := c.Query("stats") == "true"
	view, err := lh.logbookService.GetLogbook(c.Request.Context(), c.Param("slug"), withStats)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (lh *LogbookHandler) ListMine(c *gin.Context) {
	logbooks, err := lh.logbookService.ListMyLogbooks(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"logbooks": logbooks})
}

func (lh *LogbookHandler) ListMembers(c *gin.Context) {
	members, err := lh.logbookService.ListMembers(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"members": members})
}
