package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/services"
	"github.com/hearthside/logbook-backend/internal/types"
)

type InviteHandler struct {
	log           *logger.Logger
	inviteService services.InviteService
}

func NewInviteHandler(log *logger.Logger, inviteService services.InviteService) *InviteHandler {
	return &InviteHandler{
		log:           log.With("handler", "InviteHandler"),
		inviteService: inviteService,
	}
}

func (ih *InviteHandler) Create(c *gin.Context) {
	var req struct {
		Role    string `json:"role"`
		MaxUses int    `json:"max_uses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondServiceError(c, apierr.Validation("invalid request body"))
		return
	}
	invite, err := ih.inviteService.CreateInvite(
		c.Request.Context(), c.Param("slug"), types.Role(req.Role), req.MaxUses)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"invite": invite})
}

func (ih *InviteHandler) Redeem(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		RespondServiceError(c, apierr.Validation("code is required"))
		return
	}
	membership, err := ih.inviteService.RedeemInvite(c.Request.Context(), req.Code)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"membership": membership})
}

func (ih *InviteHandler) List(c *gin.Context) {
	invites, err := ih.inviteService.ListInvites(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"invites": invites})
}
