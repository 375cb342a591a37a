package routes

import (
	"net/http"

	"Caixinha/internal/contracts"
	"Caixinha/internal/domain/goal"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateGoal(c *gin.Context) {
	var body contracts.GoalCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	created, err := h.GoalService.CreateGoal(c.Request.Context(), &goal.CreateGoalRequest{
		UserId:       userID,
		Name:         body.Name,
		TargetAmount: *body.Target,
		Deadline:     body.Deadline,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.GoalResponse{Goal: created})
}

func (h *Handler) UpdateGoal(c *gin.Context) {
	var body contracts.GoalUpdateRequest
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

	updated, err := h.GoalService.UpdateGoal(c.Request.Context(), &goal.UpdateGoalRequest{
		Id:           goalID,
		UserId:       userID,
		Name:         body.Name,
		TargetAmount: body.Target,
		Deadline:     body.Deadline,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.GoalResponse{Goal: updated})
}

func (h *Handler) ListGoals(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filters := &goal.GoalFilters{}
	if status := c.Query("status"); status != "" {
		s := goal.GoalStatus(status)
		filters.Status = &s
	}

	pagination := h.parsePagination(c)
	goals, total, err := h.GoalService.ListGoals(c.Request.Context(), userID, filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(goals, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetGoal(c *gin.Context) {
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

	goalEntity, err := h.GoalService.GetGoalByID(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.GoalResponse{Goal: goalEntity})
}

func (h *Handler) ArchiveGoal(c *gin.Context) {
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

	if err := h.GoalService.ArchiveGoal(c.Request.Context(), goalID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Meta arquivada com sucesso"})
}

func (h *Handler) GetGoalProgress(c *gin.Context) {
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

	progress, err := h.GoalService.GetGoalProgress(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.GoalProgressResponse{Progress: progress})
}

func (h *Handler) ContributeToGoal(c *gin.Context) {
	var body contracts.GoalContributionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	walletID, err := pkg.ParseULID(body.WalletID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("wallet_id", "formato inválido"))
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contribution, err := h.GoalService.MakeContribution(c.Request.Context(), &goal.CreateContributionRequest{
		GoalId:   goalID,
		UserId:   userID,
		WalletId: walletID,
		Amount:   *body.Amount,
		Notes:    body.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ContributionResponse{
		Message:      "Aporte registrado com sucesso",
		Contribution: contribution,
	})
}

func (h *Handler) GetGoalContributions(c *gin.Context) {
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

	contributions, err := h.GoalService.GetContributions(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contributions": contributions, "total": len(contributions)})
}

func (h *Handler) ListGoalActivities(c *gin.Context) {
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

	pagination := h.parsePagination(c)
	activities, total, err := h.GoalService.ListActivities(c.Request.Context(), goalID, userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(activities, pagination.Page, pagination.Limit, total))
}
