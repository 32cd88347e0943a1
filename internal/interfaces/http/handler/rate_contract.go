package handler

import (
	"context"

	pricingapp "github.com/freightpro/backend/internal/application/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RateContractHandler handles rate contract lifecycle API endpoints
type RateContractHandler struct {
	BaseHandler
	contractService *pricingapp.RateContractService
}

// NewRateContractHandler creates a new RateContractHandler
func NewRateContractHandler(contractService *pricingapp.RateContractService) *RateContractHandler {
	return &RateContractHandler{
		contractService: contractService,
	}
}

// Create drafts a rate contract with its initial per-article overrides
func (h *RateContractHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req pricingapp.CreateRateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, contract)
}

// GetByID retrieves a contract by ID
func (h *RateContractHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	contract, err := h.contractService.GetByID(c.Request.Context(), scope, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// List retrieves a paginated list of contracts
func (h *RateContractHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter pricingapp.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, contracts, total, filter.Page, filter.PageSize)
}

// AddItem adds a per-article override to a draft contract
func (h *RateContractHandler) AddItem(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req pricingapp.ContractItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.AddItem(c.Request.Context(), scope, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// SubmitForApproval moves a draft contract into the approval queue
func (h *RateContractHandler) SubmitForApproval(c *gin.Context) {
	h.lifecycleOp(c, h.contractService.SubmitForApproval)
}

// Approve activates a pending contract
func (h *RateContractHandler) Approve(c *gin.Context) {
	h.lifecycleOp(c, h.contractService.Approve)
}

// Reject sends a pending contract back to draft
func (h *RateContractHandler) Reject(c *gin.Context) {
	h.lifecycleOp(c, h.contractService.Reject)
}

// Terminate ends an active contract early with a mandatory reason
func (h *RateContractHandler) Terminate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req pricingapp.TerminateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.Terminate(c.Request.Context(), scope, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

func (h *RateContractHandler) lifecycleOp(c *gin.Context, op func(ctx context.Context, scope shared.Scope, contractID uuid.UUID) (*pricingapp.RateContractResponse, error)) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	contract, err := op(c.Request.Context(), scope, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}
