package routes

import (
	"net/http"
	"time"

	"Caixinha/internal/contracts"
	"Caixinha/internal/domain/goal"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListGoalMembers(c *gin.Context) {
	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	members, err := h.GoalService.ListMembers(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members, "total": len(members)})
}

func (h *Handler) UpdateGoalMemberRole(c *gin.Context) {
	var body contracts.MemberRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	targetID, err := h.parseUserParam(c, "user_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.GoalService.UpdateMemberRole(c.Request.Context(), goalID, userID, targetID, goal.Role(body.Role)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Papel atualizado com sucesso"})
}

func (h *Handler) RemoveGoalMember(c *gin.Context) {
	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	targetID, err := h.parseUserParam(c, "user_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.GoalService.RemoveMember(c.Request.Context(), goalID, userID, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Membro removido com sucesso"})
}

func (h *Handler) CreateGoalInvitation(c *gin.Context) {
	var body contracts.InvitationCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ttl := time.Duration(body.ExpiresInHrs) * time.Hour
	issued, err := h.GoalService.CreateInvitation(c.Request.Context(), goalID, userID, goal.Role(body.Role), ttl)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.InvitationResponse{
		Invitation: issued.Invitation,
		Token:      issued.Token,
	})
}

func (h *Handler) ClaimGoalInvitation(c *gin.Context) {
	var body contracts.InvitationClaimRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	member, err := h.GoalService.ClaimInvitation(c.Request.Context(), body.Token, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MemberResponse{Member: member})
}
