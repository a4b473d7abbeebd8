package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencycrm/internal/models"
	"agencycrm/internal/services"
)

// ContractOperations is the part of services.ContractService the HTTP layer uses.
type ContractOperations interface {
	Create(ctx context.Context, in services.ContractInput, actor services.Actor) (*models.Contract, error)
	Get(ctx context.Context, id string, actor services.Actor) (*models.Contract, error)
	List(ctx context.Context, actor services.Actor, status *models.ContractStatus) ([]models.Contract, error)
	Approve(ctx context.Context, id string, actor services.Actor) (*models.Contract, error)
	Close(ctx context.Context, id string, actor services.Actor) (*models.Contract, error)
	Cancel(ctx context.Context, id string, actor services.Actor) (*models.Contract, error)
	Void(ctx context.Context, id string, actor services.Actor) (*models.Contract, error)
	Payments(ctx context.Context, contractID string, actor services.Actor) ([]models.Payment, error)
	RecordPayment(ctx context.Context, contractID string, in services.PaymentInput, actor services.Actor) (*models.Payment, error)
	DeletePayment(ctx context.Context, contractID, paymentID string, actor services.Actor) error
	Projection(ctx context.Context, id string, actor services.Actor, asOf time.Time) (*services.ARProjection, error)
	RenderPDF(ctx context.Context, id string, actor services.Actor) ([]byte, *models.Contract, error)
	EmailToClient(ctx context.Context, id string, actor services.Actor) error
}

type ContractHandler struct {
	Service ContractOperations
	log     *zap.Logger
}

func NewContractHandler(service ContractOperations, log *zap.Logger) *ContractHandler {
	return &ContractHandler{Service: service, log: log.Named("contracts")}
}

// @Summary  Create Draft contract
// @Tags     Contracts
// @Accept   json
// @Produce  json
// @Param    contract  body      services.ContractInput  true  "Contract"
// @Success  201       {object}  models.Contract
// @Failure  400       {object}  map[string]string
// @Router   /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var in services.ContractInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.Service.Create(c.Request.Context(), in, actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// @Summary  List contracts
// @Tags     Contracts
// @Produce  json
// @Param    status  query  string  false  "Draft|Active|Closed|Cancelled|Void"
// @Success  200     {array}  models.Contract
// @Router   /contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	var status *models.ContractStatus
	if s := c.Query("status"); s != "" {
		st := models.ContractStatus(s)
		status = &st
	}
	list, err := h.Service.List(c.Request.Context(), actorFrom(c), status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary  Get contract
// @Tags     Contracts
// @Produce  json
// @Param    id   path      string  true  "Contract ID"
// @Success  200  {object}  models.Contract
// @Router   /contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
	contract, err := h.Service.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type contractTransition func(ctx context.Context, id string, actor services.Actor) (*models.Contract, error)

func (h *ContractHandler) transition(fn contractTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		contract, err := fn(c.Request.Context(), c.Param("id"), actorFrom(c))
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

// @Summary  Approve Draft -> Active (management, admin)
// @Tags     Contracts
// @Param    id   path      string  true  "Contract ID"
// @Success  200  {object}  models.Contract
// @Failure  409  {object}  map[string]string
// @Router   /contracts/{id}/approve [post]
func (h *ContractHandler) Approve(c *gin.Context) { h.transition(h.Service.Approve)(c) }

// @Summary  Close Active contract
// @Tags     Contracts
// @Param    id   path      string  true  "Contract ID"
// @Success  200  {object}  models.Contract
// @Router   /contracts/{id}/close [post]
func (h *ContractHandler) Close(c *gin.Context) { h.transition(h.Service.Close)(c) }

// @Summary  Cancel Draft contract
// @Tags     Contracts
// @Param    id   path      string  true  "Contract ID"
// @Success  200  {object}  models.Contract
// @Router   /contracts/{id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) { h.transition(h.Service.Cancel)(c) }

// @Summary  Void contract and free its worker
// @Tags     Contracts
// @Param    id   path      string  true  "Contract ID"
// @Success  200  {object}  models.Contract
// @Router   /contracts/{id}/void [post]
func (h *ContractHandler) Void(c *gin.Context) { h.transition(h.Service.Void)(c) }

// @Summary  List payments
// @Tags     Contracts
// @Produce  json
// @Param    id   path     string  true  "Contract ID"
// @Success  200  {array}  models.Payment
// @Router   /contracts/{id}/payments [get]
func (h *ContractHandler) ListPayments(c *gin.Context) {
	payments, err := h.Service.Payments(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// @Summary  Record payment
// @Tags     Contracts
// @Accept   json
// @Produce  json
// @Param    id       path      string                 true  "Contract ID"
// @Param    payment  body      services.PaymentInput  true  "Payment"
// @Success  201      {object}  models.Payment
// @Router   /contracts/{id}/payments [post]
func (h *ContractHandler) RecordPayment(c *gin.Context) {
	var in services.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.Service.RecordPayment(c.Request.Context(), c.Param("id"), in, actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary  Delete payment (admin)
// @Tags     Contracts
// @Param    id          path  string  true  "Contract ID"
// @Param    payment_id  path  string  true  "Payment ID"
// @Success  204
// @Router   /contracts/{id}/payments/{payment_id} [delete]
func (h *ContractHandler) DeletePayment(c *gin.Context) {
	if err := h.Service.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("payment_id"), actorFrom(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary  Receivables projection
// @Tags     Contracts
// @Produce  json
// @Param    id     path      string  true   "Contract ID"
// @Param    as_of  query     string  false  "YYYY-MM-DD, default today"
// @Success  200    {object}  services.ARProjection
// @Router   /contracts/{id}/projection [get]
func (h *ContractHandler) Projection(c *gin.Context) {
	asOf, ok := asOfParam(c)
	if !ok {
		return
	}
	p, err := h.Service.Projection(c.Request.Context(), c.Param("id"), actorFrom(c), asOf)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary  Download contract PDF
// @Tags     Contracts
// @Produce  application/pdf
// @Param    id  path  string  true  "Contract ID"
// @Success  200
// @Router   /contracts/{id}/pdf [get]
func (h *ContractHandler) PDF(c *gin.Context) {
	doc, contract, err := h.Service.RenderPDF(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+contract.DealNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// @Summary  Email contract PDF to the client
// @Tags     Contracts
// @Param    id  path  string  true  "Contract ID"
// @Success  202
// @Router   /contracts/{id}/email [post]
func (h *ContractHandler) Email(c *gin.Context) {
	if err := h.Service.EmailToClient(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "sent"})
}
