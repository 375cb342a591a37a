package routes

import (
	"net/http"

	"Caixinha/internal/contracts"
	"Caixinha/internal/domain/ledger"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetAvailableBalance(c *gin.Context) {
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

	balance, err := h.LedgerService.GetAvailableBalance(c.Request.Context(), goalID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.BalanceResponse{GoalID: goalID.String(), Balance: balance})
}

// PayBudgetItem registra um pagamento. Corpo inválido responde com a mesma
// mensagem de valor inválido do serviço.
func (h *Handler) PayBudgetItem(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.PayBudgetItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ErrInvalidPayment.WithError(err))
		return
	}

	goalID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, appErrors.ErrInvalidPayment.WithError(err))
		return
	}

	itemID, err := h.parseIDParam(c, "budget_id")
	if err != nil {
		h.respondError(c, appErrors.ErrInvalidPayment.WithError(err))
		return
	}

	result, err := h.LedgerService.PayBudgetItem(c.Request.Context(), &ledger.PayRequest{
		GoalId:         goalID,
		UserId:         userID,
		BudgetItemId:   itemID,
		Amount:         *body.Amount,
		Notes:          body.Notes,
		IdempotencyKey: c.GetHeader(middleware.IdempotencyKeyHeader),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.NewPayBudgetItemResponse(result))
}
