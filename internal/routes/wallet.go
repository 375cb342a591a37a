package routes

import (
	"net/http"

	"Caixinha/internal/contracts"
	"Caixinha/internal/domain/wallet"
	"Caixinha/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) CreateWallet(c *gin.Context) {
	var body contracts.WalletCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	initial := decimal.Zero
	if body.InitialBalance != nil {
		initial = *body.InitialBalance
	}

	created, err := h.WalletService.CreateWallet(c.Request.Context(), &wallet.CreateWalletRequest{
		UserId:         userID,
		Name:           body.Name,
		InitialBalance: initial,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.WalletResponse{Wallet: created})
}

func (h *Handler) ListWallets(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	wallets, total, err := h.WalletService.ListWallets(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(wallets, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetWallet(c *gin.Context) {
	walletID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	w, err := h.WalletService.GetWallet(c.Request.Context(), walletID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.WalletResponse{Wallet: w})
}

func (h *Handler) DepositToWallet(c *gin.Context) {
	var body contracts.WalletDepositRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, h.bindError(err))
		return
	}

	walletID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	w, err := h.WalletService.Deposit(c.Request.Context(), walletID, userID, *body.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.WalletResponse{Wallet: w})
}
