package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencycrm/internal/authz"
	"agencycrm/internal/models"
	"agencycrm/internal/services"
)

// LeadOperations is the part of services.LeadService the HTTP layer uses.
type LeadOperations interface {
	Create(ctx context.Context, in services.LeadInput) (*models.Lead, error)
	Get(ctx context.Context, id string) (*models.Lead, error)
	Update(ctx context.Context, id string, in services.LeadInput) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	ChangeStatus(ctx context.Context, id string, to models.LeadStatus, actorID int) (*services.StatusChange, error)
	Claim(ctx context.Context, id string, actorID int) (*models.Lead, error)
	Assign(ctx context.Context, id string, ownerID, actorID int) (*models.Lead, error)
	Unassign(ctx context.Context, id string) (*models.Lead, error)
	ListAll(ctx context.Context) ([]models.Lead, error)
	ListIncoming(ctx context.Context) ([]models.Lead, error)
	ListMine(ctx context.Context, actorID int) ([]models.Lead, error)
}

// LeadSeller closes a deal on a lead.
type LeadSeller interface {
	SellLead(ctx context.Context, leadID string, in services.ContractInput, actor services.Actor) (*models.Contract, error)
}

type LeadHandler struct {
	Service LeadOperations
	Seller  LeadSeller
	log     *zap.Logger
}

func NewLeadHandler(service LeadOperations, seller LeadSeller, log *zap.Logger) *LeadHandler {
	return &LeadHandler{Service: service, Seller: seller, log: log.Named("leads")}
}

type StatusRequest struct {
	Status models.LeadStatus `json:"status" binding:"required" example:"Called No Answer"`
}

type AssignRequest struct {
	UserID int `json:"user_id" binding:"required"`
}

// canTouch: owners act on their own leads; elevated roles on any.
func canTouch(lead *models.Lead, userID, roleID int) bool {
	if authz.IsElevated(roleID) {
		return true
	}
	return lead.AssignedTo != nil && *lead.AssignedTo == userID
}

// canView adds the shared pool and the audit role to canTouch.
func canView(lead *models.Lead, userID, roleID int) bool {
	return canTouch(lead, userID, roleID) || lead.Unassigned() || authz.CanSeeAll(roleID)
}

// loadOwned fetches the lead and writes 404/403 itself.
func (h *LeadHandler) loadOwned(c *gin.Context, check func(*models.Lead, int, int) bool) (*models.Lead, bool) {
	userID, roleID := getUserAndRole(c)
	lead, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return nil, false
	}
	if !check(lead, userID, roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return lead, true
}

// @Summary  Create lead
// @Tags     Leads
// @Accept   json
// @Produce  json
// @Param    lead  body      services.LeadInput  true  "Lead"
// @Success  201   {object}  models.Lead
// @Failure  400   {object}  map[string]string
// @Router   /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var in services.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// @Summary  List leads (LOST last)
// @Tags     Leads
// @Produce  json
// @Success  200  {array}  models.Lead
// @Router   /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	userID, roleID := getUserAndRole(c)

	var (
		leads []models.Lead
		err   error
	)
	if authz.CanSeeAll(roleID) {
		leads, err = h.Service.ListAll(c.Request.Context())
	} else {
		leads, err = h.Service.ListMine(c.Request.Context(), userID)
		leads = services.SortLeads(leads)
	}
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// @Summary  Unassigned New Lead pool, newest first
// @Tags     Leads
// @Produce  json
// @Success  200  {array}  models.Lead
// @Router   /leads/incoming [get]
func (h *LeadHandler) Incoming(c *gin.Context) {
	leads, err := h.Service.ListIncoming(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// @Summary  Caller's leads in follow-up order
// @Tags     Leads
// @Produce  json
// @Success  200  {array}  models.Lead
// @Router   /leads/mine [get]
func (h *LeadHandler) Mine(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	leads, err := h.Service.ListMine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// @Summary  Get lead
// @Tags     Leads
// @Produce  json
// @Param    id   path      string  true  "Lead ID"
// @Success  200  {object}  models.Lead
// @Failure  404  {object}  map[string]string
// @Router   /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	lead, ok := h.loadOwned(c, canView)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary  Update lead contact fields
// @Tags     Leads
// @Accept   json
// @Produce  json
// @Param    id    path      string              true  "Lead ID"
// @Param    lead  body      services.LeadInput  true  "Lead"
// @Success  200   {object}  models.Lead
// @Router   /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	if _, ok := h.loadOwned(c, canTouch); !ok {
		return
	}
	var in services.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.Service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary  Delete lead (admin)
// @Tags     Leads
// @Param    id  path  string  true  "Lead ID"
// @Success  204
// @Router   /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Change lead status
// @Description  No Connection hands the lead to the next salesperson. SOLD is rejected.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Lead ID"
// @Param        body  body      StatusRequest  true  "New status"
// @Success      200   {object}  services.StatusChange
// @Failure      400   {object}  map[string]string
// @Router       /leads/{id}/status [post]
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	if _, ok := h.loadOwned(c, canTouch); !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	res, err := h.Service.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary  Claim an unassigned lead
// @Tags     Leads
// @Produce  json
// @Param    id   path      string  true  "Lead ID"
// @Success  200  {object}  models.Lead
// @Failure  409  {object}  map[string]string
// @Router   /leads/{id}/claim [post]
func (h *LeadHandler) Claim(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	lead, err := h.Service.Claim(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary  Assign lead to a user (elevated roles)
// @Tags     Leads
// @Accept   json
// @Produce  json
// @Param    id    path      string         true  "Lead ID"
// @Param    body  body      AssignRequest  true  "Owner"
// @Success  200   {object}  models.Lead
// @Router   /leads/{id}/assign [post]
func (h *LeadHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	lead, err := h.Service.Assign(c.Request.Context(), c.Param("id"), req.UserID, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary  Return lead to the pool
// @Tags     Leads
// @Produce  json
// @Param    id   path      string  true  "Lead ID"
// @Success  200  {object}  models.Lead
// @Router   /leads/{id}/unassign [post]
func (h *LeadHandler) Unassign(c *gin.Context) {
	if _, ok := h.loadOwned(c, canTouch); !ok {
		return
	}
	lead, err := h.Service.Unassign(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary      Close a deal on the lead
// @Description  Opens a Draft contract prefilled from the lead and marks it SOLD.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id        path      string                  true  "Lead ID"
// @Param        contract  body      services.ContractInput  true  "Contract terms"
// @Success      201       {object}  models.Contract
// @Failure      409       {object}  map[string]string
// @Router       /leads/{id}/sell [post]
func (h *LeadHandler) Sell(c *gin.Context) {
	var in services.ContractInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.Seller.SellLead(c.Request.Context(), c.Param("id"), in, actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}
