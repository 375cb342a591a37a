package routes

import (
	"Caixinha/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Register monta a árvore /api. Os middlewares globais (CORS, log, recovery)
// ficam a cargo de quem cria o engine.
func Register(router *gin.Engine, handler *Handler, jwtSvc *middleware.JwtService, limiter middleware.Limiter) {
	public := router.Group("/api")
	{
		public.GET("/health", handler.Health)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(jwtSvc))
	if limiter != nil {
		private.Use(middleware.RateLimit(limiter))
	}
	{
		wallets := private.Group("/wallets")
		{
			wallets.POST("", handler.CreateWallet)
			wallets.GET("", handler.ListWallets)
			wallets.GET("/:id", handler.GetWallet)
			wallets.POST("/:id/deposit", handler.DepositToWallet)
		}

		private.POST("/invitations/claim", handler.ClaimGoalInvitation)

		goals := private.Group("/goals")
		{
			goals.POST("", handler.CreateGoal)
			goals.GET("", handler.ListGoals)
			goals.GET("/:id", handler.GetGoal)
			goals.PATCH("/:id", handler.UpdateGoal)
			goals.POST("/:id/archive", handler.ArchiveGoal)
			goals.GET("/:id/progress", handler.GetGoalProgress)

			goals.GET("/:id/members", handler.ListGoalMembers)
			goals.PATCH("/:id/members/:user_id", handler.UpdateGoalMemberRole)
			goals.DELETE("/:id/members/:user_id", handler.RemoveGoalMember)
			goals.POST("/:id/invitations", handler.CreateGoalInvitation)

			goals.POST("/:id/contributions", handler.ContributeToGoal)
			goals.GET("/:id/contributions", handler.GetGoalContributions)
			goals.GET("/:id/activities", handler.ListGoalActivities)

			goals.GET("/:id/balance", handler.GetAvailableBalance)

			goals.POST("/:id/budgets", handler.CreateBudgetItem)
			goals.GET("/:id/budgets", handler.ListBudgetItems)
			goals.GET("/:id/budgets/summary", handler.GetBudgetSummary)
			goals.GET("/:id/budgets/:budget_id", handler.GetBudgetItem)
			goals.PATCH("/:id/budgets/:budget_id", handler.UpdateBudgetItem)
			goals.GET("/:id/budgets/:budget_id/payments", handler.ListBudgetPayments)
			goals.POST("/:id/budgets/:budget_id/pay", handler.PayBudgetItem)
		}
	}
}
