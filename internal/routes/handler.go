package routes

import (
	"context"
	"errors"

	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/goal"
	"Caixinha/internal/domain/ledger"
	"Caixinha/internal/domain/wallet"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/logger"
	"Caixinha/internal/middleware"
	"Caixinha/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type Handler struct {
	GoalService   *goal.Service
	BudgetService *budget.Service
	LedgerService *ledger.Service
	WalletService *wallet.Service

	// HealthCheck verifica as dependências externas; nil responde sempre ok.
	HealthCheck func(ctx context.Context) error
}

func (h *Handler) GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return uuid.Nil, appErrors.ErrUnauthorized
	}

	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, appErrors.ErrUnauthorized
	}
	return userID, nil
}

func (h *Handler) parseIDParam(c *gin.Context, name string) (ulid.ULID, error) {
	raw := c.Param(name)
	if raw == "" {
		return ulid.ULID{}, appErrors.NewValidationError(name, "é obrigatório")
	}
	id, err := pkg.ParseULID(raw)
	if err != nil {
		return ulid.ULID{}, appErrors.NewValidationError(name, "formato inválido")
	}
	return id, nil
}

func (h *Handler) parseUserParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := pkg.ParseUserID(c.Param(name))
	if err != nil {
		return uuid.Nil, appErrors.NewValidationError(name, "formato inválido")
	}
	return id, nil
}

func (h *Handler) parsePagination(c *gin.Context) *pkg.PaginationParams {
	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	var pageNum, limitNum int
	if p, err := pkg.ParseInt(page); err == nil && p > 0 {
		pageNum = p
	} else {
		pageNum = 1
	}

	if l, err := pkg.ParseInt(limit); err == nil && l > 0 {
		limitNum = l
	} else {
		limitNum = 10
	}

	// sort desconhecido cai na ordem padrão de cada listagem
	sort, _ := pkg.ParseSort(c.Query("sort"))

	return pkg.NormalizePagination(&pkg.PaginationParams{
		Page:  pageNum,
		Limit: limitNum,
		Sort:  sort,
	})
}

// bindError distingue falha de validação de corpo malformado.
func (h *Handler) bindError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return appErrors.ParseValidationErrors(err)
	}
	return appErrors.ErrBadRequest.WithError(err)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	event := logger.Warn()
	if appErr.StatusCode >= 500 {
		event = logger.Error()
	}
	event = event.Str("code", appErr.Code).Str("path", c.FullPath())
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")
	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}
