package routes

import (
	"net/http"

	"Caixinha/internal/contracts"
	"Caixinha/internal/domain/budget"
	"Caixinha/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateBudgetItem(c *gin.Context) {
	var body contracts.BudgetItemCreateRequest
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

	item, err := h.BudgetService.CreateBudgetItem(c.Request.Context(), &budget.CreateItemRequest{
		GoalId:   goalID,
		UserId:   userID,
		Name:     body.Name,
		Amount:   *body.Amount,
		Priority: budget.Priority(body.Priority),
		DueDate:  body.DueDate,
		Notes:    body.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.NewBudgetItemResponse(item))
}

func (h *Handler) UpdateBudgetItem(c *gin.Context) {
	var body contracts.BudgetItemUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	itemID, err := h.parseIDParam(c, "budget_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := &budget.UpdateItemRequest{
		GoalId:  goalID,
		ItemId:  itemID,
		UserId:  userID,
		Name:    body.Name,
		DueDate: body.DueDate,
		Notes:   body.Notes,
	}
	if body.Priority != nil {
		priority := budget.Priority(*body.Priority)
		req.Priority = &priority
	}

	item, err := h.BudgetService.UpdateBudgetItem(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.NewBudgetItemResponse(item))
}

func (h *Handler) GetBudgetItem(c *gin.Context) {
	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	itemID, err := h.parseIDParam(c, "budget_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.BudgetService.GetBudgetItem(c.Request.Context(), goalID, itemID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.NewBudgetItemResponse(item))
}

func (h *Handler) ListBudgetItems(c *gin.Context) {
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

	filters := &budget.ItemFilters{}
	if status := c.Query("status"); status != "" {
		s := budget.Status(status)
		filters.Status = &s
	}

	pagination := h.parsePagination(c)
	items, total, err := h.BudgetService.ListBudgetItems(c.Request.Context(), goalID, userID, filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetBudgetSummary(c *gin.Context) {
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

	summary, err := h.BudgetService.GetBudgetSummary(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.BudgetSummaryResponse{Summary: summary})
}

func (h *Handler) ListBudgetPayments(c *gin.Context) {
	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	itemID, err := h.parseIDParam(c, "budget_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payments, err := h.BudgetService.ListPayments(c.Request.Context(), goalID, itemID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": len(payments)})
}
