package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agencycrm/internal/authz"
	"agencycrm/internal/handlers"
	"agencycrm/internal/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Leads     *handlers.LeadHandler
	Contracts *handlers.ContractHandler
	Reports   *handlers.ReportHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, jwtSecret []byte) *gin.Engine {
	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/login", h.Auth.Login)

	// ---- protected
	api := r.Group("/", middleware.AuthMiddleware(jwtSecret), middleware.ReadOnlyGuard())

	// LEADS
	leads := api.Group("/leads")
	{
		leads.POST("", h.Leads.Create)
		leads.GET("", h.Leads.List)
		leads.GET("/incoming", h.Leads.Incoming)
		leads.GET("/mine", h.Leads.Mine)
		leads.GET("/:id", h.Leads.GetByID)
		leads.PUT("/:id", h.Leads.Update)
		leads.DELETE("/:id", middleware.Require(authz.IsAdmin), h.Leads.Delete)
		leads.POST("/:id/status", h.Leads.UpdateStatus)
		leads.POST("/:id/claim", h.Leads.Claim)
		leads.POST("/:id/assign", middleware.Require(authz.IsElevated), h.Leads.Assign)
		leads.POST("/:id/unassign", h.Leads.Unassign)
		leads.POST("/:id/sell", h.Leads.Sell)
	}

	// CONTRACTS
	contracts := api.Group("/contracts")
	{
		contracts.POST("", h.Contracts.Create)
		contracts.GET("", h.Contracts.List)
		contracts.GET("/:id", h.Contracts.GetByID)
		contracts.POST("/:id/approve", h.Contracts.Approve)
		contracts.POST("/:id/close", h.Contracts.Close)
		contracts.POST("/:id/cancel", h.Contracts.Cancel)
		contracts.POST("/:id/void", h.Contracts.Void)
		contracts.GET("/:id/payments", h.Contracts.ListPayments)
		contracts.POST("/:id/payments", h.Contracts.RecordPayment)
		contracts.DELETE("/:id/payments/:payment_id", h.Contracts.DeletePayment)
		contracts.GET("/:id/projection", h.Contracts.Projection)
		contracts.GET("/:id/pdf", h.Contracts.PDF)
		contracts.POST("/:id/email", h.Contracts.Email)
	}

	// REPORTS (audit/ops/mgmt/admin)
	reports := api.Group("/reports", middleware.Require(authz.CanSeeAll))
	{
		reports.GET("/receivables", h.Reports.Receivables)
		reports.GET("/receivables.xlsx", h.Reports.ReceivablesXLSX)
	}

	return r
}
